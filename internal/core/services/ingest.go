package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driving"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Embedding retry backoff bounds.
const (
	baseRetryDelay = 200 * time.Millisecond
	maxRetryDelay  = 5 * time.Second
)

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// IngestService uploads plan documents, extracts and segments their text,
// embeds every segment and stores the result.
type IngestService struct {
	blobs       driven.BlobStore
	plans       driven.PlanStore
	extractors  driven.ExtractorRegistry
	segmenter   driven.Segmenter
	embedder    driven.EmbeddingService
	maxAttempts int

	// sleep waits between embedding attempts. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewIngestService creates an ingest service. maxAttempts below one is
// treated as a single attempt per segment.
func NewIngestService(
	blobs driven.BlobStore,
	plans driven.PlanStore,
	extractors driven.ExtractorRegistry,
	segmenter driven.Segmenter,
	embedder driven.EmbeddingService,
	maxAttempts int,
) *IngestService {
	return &IngestService{
		blobs:       blobs,
		plans:       plans,
		extractors:  extractors,
		segmenter:   segmenter,
		embedder:    embedder,
		maxAttempts: max(maxAttempts, 1),
		sleep:       sleepContext,
	}
}

// Ingest uploads, extracts, segments and embeds one document.
func (s *IngestService) Ingest(ctx context.Context, doc domain.PlanDocument) (*domain.IngestResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(doc.Data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, doc.Filename)
	}

	logger.Section("Ingest " + doc.Filename)
	defer logger.Timed("ingest " + doc.Filename)()

	path := StoragePath(uuid.NewString(), doc.Filename)
	if err := s.blobs.Put(ctx, path, doc.Data, doc.ContentType); err != nil {
		return nil, fmt.Errorf("%w: upload %s: %w", domain.ErrStorage, doc.Filename, err)
	}
	logger.Debug("Uploaded %s to %s", doc.Filename, path)

	pages, err := s.extractors.Pages(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	collected := slices.Collect(pages)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.Join(collected, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s: no extractable text", domain.ErrExtraction, doc.Filename)
	}

	chunks := s.segmenter.Split(text)
	logger.Debug("Extracted %d pages, %d characters, %d segments (%s)",
		len(collected), len([]rune(text)), len(chunks), s.segmenter.Name())

	segments := make([]domain.FloorPlanSegment, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("%w: %s segment %d: %w", domain.ErrEmbedding, doc.Filename, i, err)
		}
		segments = append(segments, domain.FloorPlanSegment{
			StoragePath: path,
			Filename:    doc.Filename,
			Position:    i,
			Content:     chunk,
			Embedding:   vec,
		})
	}

	if _, err := s.plans.InsertSegments(ctx, segments); err != nil {
		return nil, fmt.Errorf("%w: insert segments: %w", domain.ErrStorage, err)
	}

	logger.Info("Ingested %s: %d pages, %d segments", doc.Filename, len(collected), len(segments))
	return &domain.IngestResult{
		StoragePath: path,
		Filename:    doc.Filename,
		Pages:       len(collected),
		Segments:    len(segments),
	}, nil
}

// IngestAll ingests documents in order and stops at the first failure.
func (s *IngestService) IngestAll(ctx context.Context, docs []domain.PlanDocument) ([]domain.IngestResult, error) {
	results := make([]domain.IngestResult, 0, len(docs))
	for _, doc := range docs {
		result, err := s.Ingest(ctx, doc)
		if err != nil {
			return results, fmt.Errorf("ingest %s: %w", doc.Filename, err)
		}
		results = append(results, *result)
	}
	return results, nil
}

// embed calls the embedding service, retrying rate limits and server errors.
func (s *IngestService) embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := range s.maxAttempts {
		if attempt > 0 {
			delay := retryDelay(attempt, lastErr)
			logger.Debug("Embedding attempt %d failed, retrying in %s: %v", attempt, delay, lastErr)
			if err := s.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		vec, err := s.embedder.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var remote *driven.RemoteError
	return errors.As(err, &remote) && remote.Retryable()
}

// retryDelay doubles from baseRetryDelay up to maxRetryDelay. A provider's
// Retry-After wins when it asks for longer.
func retryDelay(attempt int, err error) time.Duration {
	delay := maxRetryDelay
	if attempt < 6 {
		delay = min(baseRetryDelay<<attempt, maxRetryDelay)
	}
	var remote *driven.RemoteError
	if errors.As(err, &remote) && remote.RetryAfter > delay {
		return remote.RetryAfter
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StoragePath builds the object storage path for an upload: a unique
// prefix followed by the filename with unsafe characters replaced.
func StoragePath(prefix, filename string) string {
	name := strings.Trim(unsafePathChars.ReplaceAllString(filename, "-"), "-")
	if name == "" {
		name = "document"
	}
	return prefix + "/" + name
}
