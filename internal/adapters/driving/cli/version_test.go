package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{"release build", "v0.3.1", "houseplan v0.3.1\n"},
		{"development build", "dev", "houseplan dev\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cleanup := setupTestServices()
			defer cleanup()

			saved := version
			version = tt.version
			defer func() { version = saved }()

			out, _, err := execute("", "version")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestVersion_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("", "version", "extra")
	assert.Error(t, err)
}
