package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// writeFiles creates files with placeholder PDF content under dir.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf", "notes.txt", "archive/2019/c.pdf", "archive/d.PDF.bak")

	t.Run("files", func(t *testing.T) {
		got, err := expandPaths([]string{filepath.Join(dir, "b.pdf"), filepath.Join(dir, "a.pdf")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "b.pdf"), filepath.Join(dir, "a.pdf")}, got)
	})

	t.Run("recursive glob", func(t *testing.T) {
		got, err := expandPaths([]string{filepath.Join(dir, "**", "*.pdf")})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.pdf"),
			filepath.Join(dir, "b.pdf"),
			filepath.Join(dir, "archive", "2019", "c.pdf"),
		}, got)
	})

	t.Run("directory", func(t *testing.T) {
		got, err := expandPaths([]string{filepath.Join(dir, "archive")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "archive", "2019", "c.pdf")}, got)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		a := filepath.Join(dir, "a.pdf")
		got, err := expandPaths([]string{a, filepath.Join(dir, "*.pdf"), a})
		require.NoError(t, err)
		assert.Equal(t, []string{a, filepath.Join(dir, "b.pdf")}, got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := expandPaths([]string{filepath.Join(dir, "missing.pdf")})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestIngestCmd_IngestsInOrder(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf")

	out, _, err := execute("", "ingest", filepath.Join(dir, "*.pdf"))

	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ts.ingest.filenames())
	assert.Equal(t, "application/pdf", ts.ingest.docs[0].ContentType)
	assert.Contains(t, out, "a.pdf: 1 pages, 2 segments -> p/a.pdf")
	assert.Contains(t, out, "Ingested 2 documents")
}

func TestIngestCmd_StopsAtFirstFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.failOn = "b.pdf"
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf", "c.pdf")

	out, _, err := execute("", "ingest", filepath.Join(dir, "*.pdf"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "after 1 of 3 documents")
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ts.ingest.filenames())
	assert.Contains(t, out, "a.pdf: 1 pages")
}

func TestIngestCmd_NoMatches(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("", "ingest", filepath.Join(t.TempDir(), "*.pdf"))

	assert.EqualError(t, err, "no documents matched")
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("", "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}
