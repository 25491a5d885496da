package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// Ensure PlanStore implements the interface.
var _ driven.PlanStore = (*PlanStore)(nil)

// PlanStore is an in-memory implementation of driven.PlanStore.
// Similarity search is a brute-force scan.
type PlanStore struct {
	mu       sync.RWMutex
	segments []domain.FloorPlanSegment
	requests map[string]domain.CustomerRequest
}

// NewPlanStore creates a new in-memory plan store.
func NewPlanStore() *PlanStore {
	return &PlanStore{
		requests: make(map[string]domain.CustomerRequest),
	}
}

// InsertSegment stores one segment.
func (s *PlanStore) InsertSegment(ctx context.Context, segment domain.FloorPlanSegment) (domain.FloorPlanSegment, error) {
	stored, err := s.InsertSegments(ctx, []domain.FloorPlanSegment{segment})
	if err != nil {
		return domain.FloorPlanSegment{}, err
	}
	return stored[0], nil
}

// InsertSegments stores all segments or none of them.
func (s *PlanStore) InsertSegments(_ context.Context, segments []domain.FloorPlanSegment) ([]domain.FloorPlanSegment, error) {
	stored := make([]domain.FloorPlanSegment, 0, len(segments))
	for _, segment := range segments {
		if len(segment.Embedding) == 0 {
			return nil, fmt.Errorf("%w: segment has no embedding", domain.ErrInvalidInput)
		}
		if segment.ID == "" {
			segment.ID = uuid.New().String()
		}
		if segment.CreatedAt.IsZero() {
			segment.CreatedAt = time.Now().UTC()
		}
		segment.Embedding = slices.Clone(segment.Embedding)
		stored = append(stored, segment)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, stored...)
	return stored, nil
}

// InsertRequest stores a customer request.
func (s *PlanStore) InsertRequest(_ context.Context, req domain.CustomerRequest) (domain.CustomerRequest, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
	return req, nil
}

// GetRequest retrieves a stored customer request by ID.
func (s *PlanStore) GetRequest(_ context.Context, id string) (*domain.CustomerRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &req, nil
}

// TopNSimilar ranks segments by cosine similarity to query. Ties keep
// insertion order. Segments that cannot be compared are skipped.
func (s *PlanStore) TopNSimilar(_ context.Context, query []float32, n int) ([]domain.RetrievedPlan, error) {
	if n <= 0 {
		return []domain.RetrievedPlan{}, nil
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	plans := make([]domain.RetrievedPlan, 0, len(s.segments))
	for _, segment := range s.segments {
		score, err := domain.CosineSimilarity(query, segment.Embedding)
		if err != nil {
			continue
		}
		plans = append(plans, domain.RetrievedPlan{
			StoragePath: segment.StoragePath,
			Filename:    segment.Filename,
			Score:       score,
		})
	}
	s.mu.RUnlock()

	slices.SortStableFunc(plans, func(a, b domain.RetrievedPlan) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(plans) > n {
		plans = plans[:n]
	}
	return plans, nil
}

// Segments returns a copy of every stored segment in insertion order.
func (s *PlanStore) Segments() []domain.FloorPlanSegment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.segments)
}

// Close releases resources.
func (s *PlanStore) Close() error {
	return nil
}
