// Package mcp provides an MCP (Model Context Protocol) server adapter for houseplan.
// It lets AI assistants ingest floor plans, draft proposals and discuss them
// through session-scoped tools.
package mcp

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")

// ErrMissingIngestService is returned when ingest_plan is called without an ingest service.
var ErrMissingIngestService = errors.New("mcp: ingest service is not configured")
