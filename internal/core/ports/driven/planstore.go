package driven

import (
	"context"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// PlanStore persists embedded plan segments and customer requests and
// answers nearest-neighbour queries over the segment embeddings.
type PlanStore interface {
	// InsertSegment stores one segment and returns it with ID and CreatedAt set.
	InsertSegment(ctx context.Context, segment domain.FloorPlanSegment) (domain.FloorPlanSegment, error)

	// InsertSegments stores all segments or none of them.
	InsertSegments(ctx context.Context, segments []domain.FloorPlanSegment) ([]domain.FloorPlanSegment, error)

	// InsertRequest stores a customer request and returns it with ID and CreatedAt set.
	InsertRequest(ctx context.Context, req domain.CustomerRequest) (domain.CustomerRequest, error)

	// TopNSimilar returns at most n segments ranked by descending cosine
	// similarity to query. Duplicate storage paths are returned as stored.
	TopNSimilar(ctx context.Context, query []float32, n int) ([]domain.RetrievedPlan, error)

	// Close releases resources.
	Close() error
}
