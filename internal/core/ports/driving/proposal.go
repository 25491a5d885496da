package driving

import (
	"context"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// ProposalService retrieves similar plans and drafts proposals.
type ProposalService interface {
	// Retrieve embeds the request summary and returns the deduplicated
	// nearest plans, most similar first.
	Retrieve(ctx context.Context, req domain.CustomerRequest) ([]domain.RetrievedPlan, error)

	// Propose generates proposal text for the request and candidate plans.
	Propose(ctx context.Context, req domain.CustomerRequest, plans []domain.RetrievedPlan) (string, error)

	// Draft validates and records the request, then retrieves and proposes.
	Draft(ctx context.Context, req domain.CustomerRequest) (*domain.Proposal, error)
}
