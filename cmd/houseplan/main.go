// Command houseplan ingests reference floor plans and drafts proposals for
// customer requests.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/ai"
	blobfs "github.com/custodia-labs/houseplan-cli/internal/adapters/driven/blob/filesystem"
	blobmem "github.com/custodia-labs/houseplan-cli/internal/adapters/driven/blob/memory"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/core/services"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers"
	"github.com/custodia-labs/houseplan-cli/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()

	// A missing .env file is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	cleanup, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	code := 0
	if err := cli.Execute(version); err != nil {
		code = 1
	}
	cleanup()
	os.Exit(code)
}

// wire builds the adapters selected in settings and installs the services.
// When the datastore cannot be opened only the settings commands are
// available, so a broken configuration can still be repaired.
func wire(ctx context.Context) (func(), error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	aiServices := ai.Initialise(ctx, settings)

	plans, err := openPlanStore(ctx, settings, aiServices.EmbeddingService)
	if err != nil {
		logger.Warn("%v. Run 'houseplan settings storage' to fix", err)
		cli.SetServices(cli.Services{Settings: settingsService})
		return aiServices.Close, nil
	}

	blobs, err := openBlobStore(settings)
	if err != nil {
		plans.Close()
		aiServices.Close()
		return nil, err
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		plans.Close()
		aiServices.Close()
		return nil, fmt.Errorf("loading prompts: %w", err)
	}

	ingest := services.NewIngestService(
		blobs,
		plans,
		normalisers.NewDefaultRegistry(),
		chunker.New(chunker.WithMaxChars(settings.Ingest.MaxChars)),
		aiServices.EmbeddingService,
		settings.Ingest.MaxAttempts,
	)
	proposals := services.NewProposalService(
		plans,
		aiServices.EmbeddingService,
		aiServices.LLMService,
		prompts,
		settings.Retrieval.TopN,
	)
	sessions := services.NewSessionManager(
		proposals,
		aiServices.LLMService,
		prompts,
		blobs,
		settings.Retrieval.SignedURLTTL,
	)

	cli.SetServices(cli.Services{
		Settings: settingsService,
		Ingest:   ingest,
		Proposal: proposals,
		Session:  sessions,
	})

	return func() {
		if err := plans.Close(); err != nil {
			logger.Warn("closing datastore: %v", err)
		}
		aiServices.Close()
	}, nil
}

func openPlanStore(ctx context.Context, settings *domain.AppSettings, embedder driven.EmbeddingService) (driven.PlanStore, error) {
	switch settings.Storage.Backend {
	case domain.StorageMemory:
		return memory.NewPlanStore(), nil

	case domain.StoragePostgres:
		dims := domain.EmbeddingDimensions()[settings.Embedding.Model]
		if dims == 0 && embedder != nil {
			dims = embedder.Dimensions()
		}
		store, err := postgres.New(ctx, postgres.Config{DSN: settings.Storage.DSN, Dimensions: dims})
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return store, nil

	default:
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return store, nil
	}
}

// openBlobStore keeps uploads in memory when the datastore is in memory,
// so nothing outlives the process.
func openBlobStore(settings *domain.AppSettings) (driven.BlobStore, error) {
	if settings.Storage.Backend == domain.StorageMemory {
		return blobmem.New(), nil
	}
	store, err := blobfs.New(settings.Blob.Dir, settings.Blob.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("opening blob store: %w", err)
	}
	return store, nil
}
