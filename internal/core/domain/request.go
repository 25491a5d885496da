package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CustomerRequest captures a household's housing requirements.
// It is created once per submission and never modified afterwards.
type CustomerRequest struct {
	// ID is assigned by the datastore on insert.
	ID string `json:"id,omitempty" yaml:"-"`

	// FamilySize is the number of people in the household.
	FamilySize int `json:"family_size" yaml:"family_size"`

	// RoomCount is the number of rooms wanted.
	RoomCount int `json:"rooms" yaml:"rooms"`

	// FloorAreaSqm is the desired floor area in square metres.
	FloorAreaSqm float64 `json:"area_sqm" yaml:"area_sqm"`

	// Budget is expressed in ten-thousand yen units.
	Budget float64 `json:"budget" yaml:"budget"`

	// Preferences is free text ("south-facing living room", "walk-in closet").
	Preferences string `json:"preferences,omitempty" yaml:"preferences"`

	CreatedAt time.Time `json:"created_at,omitzero" yaml:"-"`
}

// Validate checks that every numeric field is positive.
func (r CustomerRequest) Validate() error {
	var problems []string
	if r.FamilySize <= 0 {
		problems = append(problems, "family size must be positive")
	}
	if r.RoomCount <= 0 {
		problems = append(problems, "room count must be positive")
	}
	if r.FloorAreaSqm <= 0 {
		problems = append(problems, "floor area must be positive")
	}
	if r.Budget <= 0 {
		problems = append(problems, "budget must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// Summary renders the request as the single free-text line that gets
// embedded for similarity retrieval.
func (r CustomerRequest) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d people, %d rooms, %s sqm, budget %s",
		r.FamilySize, r.RoomCount, FormatNumber(r.FloorAreaSqm), FormatNumber(r.Budget))
	if p := strings.TrimSpace(r.Preferences); p != "" {
		b.WriteString(", ")
		b.WriteString(p)
	}
	return b.String()
}

// FormatNumber prints v without trailing zeros ("120", "87.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Proposal is the generated answer to a customer request.
type Proposal struct {
	// Request is the recorded request, with ID set.
	Request CustomerRequest `json:"request"`

	// Plans are the deduplicated candidates the text refers to.
	Plans []RetrievedPlan `json:"plans"`

	// Text is the generator output, verbatim.
	Text string `json:"text"`
}
