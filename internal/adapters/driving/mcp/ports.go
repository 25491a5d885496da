package mcp

import (
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driving"
)

// Ports are the core services the tools call.
type Ports struct {
	Session driving.SessionService

	// Ingest is optional. Without it ingest_plan reports an error.
	Ingest driving.IngestService
}

// Validate reports a missing session service.
func (p *Ports) Validate() error {
	if p == nil || p.Session == nil {
		return ErrMissingSessionService
	}
	return nil
}
