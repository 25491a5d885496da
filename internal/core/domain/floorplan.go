package domain

import (
	"strings"
	"time"
)

// PlanDocument is an uploaded floor-plan file awaiting ingestion.
type PlanDocument struct {
	// Filename is the name the user uploaded the file under.
	Filename string

	// ContentType is the MIME type, e.g. "application/pdf".
	ContentType string

	// Data is the raw file content.
	Data []byte
}

// FloorPlanSegment is one embedded text segment of an ingested document.
// Every segment of a document shares its StoragePath and Filename.
// Segments are immutable once written.
type FloorPlanSegment struct {
	// ID is assigned by the datastore on insert.
	ID string

	// StoragePath locates the original document in object storage.
	StoragePath string

	// Filename is the original upload name.
	Filename string

	// Position is the zero-based index of the segment within its document.
	Position int

	// Content is the segment text.
	Content string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// CreatedAt is when the segment was stored.
	CreatedAt time.Time
}

// IngestResult summarises a completed ingestion.
type IngestResult struct {
	StoragePath string `json:"storage_path"`
	Filename    string `json:"filename"`
	Pages       int    `json:"pages"`
	Segments    int    `json:"segments"`
}

// RetrievedPlan is a similarity hit returned by the datastore.
// It lives only in session state until the next request replaces it.
type RetrievedPlan struct {
	// StoragePath may carry a transient "?token" suffix.
	StoragePath string `json:"storage_path"`

	// Filename is the original upload name.
	Filename string `json:"filename"`

	// Score is the cosine similarity to the query, higher is closer.
	Score float64 `json:"score"`
}

// Key returns the dedup key: StoragePath with any access-token suffix removed.
func (p RetrievedPlan) Key() string {
	return StripAccessToken(p.StoragePath)
}

// StripAccessToken removes everything from the first "?" onwards.
func StripAccessToken(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// DedupePlans collapses plans that reference the same document.
// For each key the last-seen record wins, and the output keeps the order in
// which each key first appeared. The result length equals the number of
// distinct keys in plans.
func DedupePlans(plans []RetrievedPlan) []RetrievedPlan {
	if len(plans) == 0 {
		return []RetrievedPlan{}
	}

	index := make(map[string]int, len(plans))
	out := make([]RetrievedPlan, 0, len(plans))
	for _, p := range plans {
		key := p.Key()
		if i, ok := index[key]; ok {
			out[i] = p
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}

// FindPlan returns the plan whose dedup key matches key.
func FindPlan(plans []RetrievedPlan, key string) (RetrievedPlan, bool) {
	key = StripAccessToken(key)
	for _, p := range plans {
		if p.Key() == key {
			return p, true
		}
	}
	return RetrievedPlan{}, false
}
