package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	assert.EqualError(t, ErrMissingSessionService, "tui: session service is required")
	assert.EqualError(t, ErrMissingSession, "tui: session ID is required")
}
