package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers"
)

var (
	watchPattern string
	watchSettle  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest documents as they appear in a directory",
	Long: `Watches a directory and ingests every new or rewritten document whose
name matches --pattern. A file is ingested once it has stopped changing for
--settle. Failures are reported and the watch continues.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "*.pdf", "file name pattern to ingest")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 500*time.Millisecond, "quiet period before a file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cmd.Printf("Watching %s for %s (Ctrl+C to stop)\n", dir, watchPattern)
	return watchDir(ctx, dir, watchPattern, watchSettle, func(path string) {
		ingestFile(ctx, cmd, path)
	})
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) {
	doc, err := normalisers.LoadDocument(path)
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}
	result, err := ingestService.Ingest(ctx, doc)
	if err != nil {
		cmd.PrintErrf("Error: ingest %s: %v\n", doc.Filename, err)
		return
	}
	printIngestResult(cmd, *result)
}

// watchDir calls handle for each file in dir whose base name matches pattern,
// once no event has been seen for it during settle. It returns when ctx is done.
func watchDir(ctx context.Context, dir, pattern string, settle time.Duration, handle func(path string)) error {
	pattern = strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: pattern %q", domain.ErrInvalidInput, pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return debounceEvents(ctx, watcher.Events, watcher.Errors, pattern, settle, handle)
}

// debounceEvents runs the watch loop over a watcher's channels. It returns
// when ctx is done or either channel closes.
func debounceEvents(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	pattern string,
	settle time.Duration,
	handle func(path string),
) error {

	type pending struct {
		timer *time.Timer
		seq   int
	}
	type settled struct {
		path string
		seq  int
	}

	// Every event restarts the file's timer. A timer that fired before being
	// superseded carries a stale seq and is ignored.
	ready := make(chan settled)
	done := make(chan struct{})
	timers := make(map[string]pending)
	seq := 0
	defer func() {
		close(done)
		for _, p := range timers {
			p.timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := strings.ToLower(filepath.Base(event.Name))
			if match, _ := doublestar.Match(pattern, name); !match {
				continue
			}

			if p, ok := timers[event.Name]; ok {
				p.timer.Stop()
			}
			seq++
			s := settled{path: event.Name, seq: seq}
			timers[s.path] = pending{
				seq: s.seq,
				timer: time.AfterFunc(settle, func() {
					select {
					case ready <- s:
					case <-done:
					}
				}),
			}

		case s := <-ready:
			if p, ok := timers[s.path]; !ok || p.seq != s.seq {
				continue
			}
			delete(timers, s.path)
			logger.Debug("watch: %s settled", s.path)
			handle(s.path)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}
