package driving

import (
	"context"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// IngestService turns uploaded plan documents into searchable segments.
type IngestService interface {
	// Ingest uploads, extracts, segments and embeds one document.
	// Nothing is written to the plan store unless every segment embeds.
	Ingest(ctx context.Context, doc domain.PlanDocument) (*domain.IngestResult, error)

	// IngestAll ingests documents in order and stops at the first failure.
	// Results for documents ingested before the failure are returned with the error.
	IngestAll(ctx context.Context, docs []domain.PlanDocument) ([]domain.IngestResult, error)
}
