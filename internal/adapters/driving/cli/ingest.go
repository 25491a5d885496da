package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path|glob>...",
	Short: "Register floor-plan documents as reference plans",
	Long: `Uploads each document, extracts its text, splits it into segments and
stores an embedding per segment.

Arguments may be files, directories (every PDF below them) or glob patterns.
Documents are ingested in order and the first failure stops the batch.
Documents ingested before the failure stay registered.

Examples:
  houseplan ingest plan-a.pdf plan-b.pdf
  houseplan ingest "archive/**/*.pdf"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no documents matched")
	}

	docs := make([]domain.PlanDocument, 0, len(paths))
	for _, p := range paths {
		doc, err := normalisers.LoadDocument(p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	results, err := ingestService.IngestAll(cmd.Context(), docs)
	for _, r := range results {
		printIngestResult(cmd, r)
	}
	if err != nil {
		return fmt.Errorf("ingest failed after %d of %d documents: %w", len(results), len(docs), err)
	}

	cmd.Printf("Ingested %d documents\n", len(results))
	return nil
}

func printIngestResult(cmd *cobra.Command, r domain.IngestResult) {
	cmd.Printf("  %s: %d pages, %d segments -> %s\n", r.Filename, r.Pages, r.Segments, r.StoragePath)
}

// expandPaths resolves files, directories and doublestar patterns into a
// sorted, duplicate-free file list.
func expandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[{") {
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("%w: pattern %q: %w", domain.ErrInvalidInput, arg, err)
			}
			slices.Sort(matches)
			add(matches...)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(arg), "**/*.pdf", doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", arg, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(filepath.Join(arg, filepath.FromSlash(m)))
		}
	}
	return out, nil
}
