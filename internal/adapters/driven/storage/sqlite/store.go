package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	sqlitedriver "modernc.org/sqlite"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "houseplan.db"

// registerFunctions installs vec_cosine on every connection the driver
// opens. It runs once per process; later calls return the first result.
var registerFunctions = sync.OnceValue(func() error {
	return sqlitedriver.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosine)
})

var _ driven.PlanStore = (*Store)(nil)

// Store is the SQLite-backed plan store.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore opens dataDir/houseplan.db in WAL mode and brings its schema up
// to date. An empty dataDir means ~/.houseplan/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".houseplan", "data")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	return open(dbPath, dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
}

// NewMemoryStore opens a private in-memory database.
func NewMemoryStore() (*Store, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (*Store, error) {
	if err := registerFunctions(); err != nil {
		return nil, fmt.Errorf("registering vec_cosine: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:   db,
		path: path,
		now:  time.Now,
	}

	if err := migrate(context.Background(), db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Path is the database file, or ":memory:".
func (s *Store) Path() string { return s.path }

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertSegment stores one segment.
func (s *Store) InsertSegment(ctx context.Context, segment domain.FloorPlanSegment) (domain.FloorPlanSegment, error) {
	return s.insertSegment(ctx, s.db, segment)
}

// InsertSegments stores all segments in one transaction.
func (s *Store) InsertSegments(ctx context.Context, segments []domain.FloorPlanSegment) ([]domain.FloorPlanSegment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stored := make([]domain.FloorPlanSegment, 0, len(segments))
	for _, segment := range segments {
		saved, err := s.insertSegment(ctx, tx, segment)
		if err != nil {
			return nil, err
		}
		stored = append(stored, saved)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing transaction: %w", domain.ErrStorage, err)
	}
	return stored, nil
}

func (s *Store) insertSegment(ctx context.Context, db execer, segment domain.FloorPlanSegment) (domain.FloorPlanSegment, error) {
	if len(segment.Embedding) == 0 {
		return domain.FloorPlanSegment{}, fmt.Errorf("%w: segment has no embedding", domain.ErrInvalidInput)
	}
	if segment.ID == "" {
		segment.ID = uuid.New().String()
	}
	if segment.CreatedAt.IsZero() {
		segment.CreatedAt = s.now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO floorplans (id, storage_path, filename, position, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, segment.ID, segment.StoragePath, segment.Filename, segment.Position, segment.Content,
		encodeVector(segment.Embedding), segment.CreatedAt)
	if err != nil {
		return domain.FloorPlanSegment{}, fmt.Errorf("%w: saving segment: %w", domain.ErrStorage, err)
	}
	return segment, nil
}

// InsertRequest stores a customer request.
func (s *Store) InsertRequest(ctx context.Context, req domain.CustomerRequest) (domain.CustomerRequest, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customer_requests (id, family_size, rooms, area_sqm, budget, preferences, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.ID, req.FamilySize, req.RoomCount, req.FloorAreaSqm, req.Budget, req.Preferences, req.CreatedAt)
	if err != nil {
		return domain.CustomerRequest{}, fmt.Errorf("%w: saving request: %w", domain.ErrStorage, err)
	}
	return req, nil
}

// GetRequest retrieves a stored customer request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (*domain.CustomerRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, family_size, rooms, area_sqm, budget, preferences, created_at
		FROM customer_requests WHERE id = ?
	`, id)

	var req domain.CustomerRequest
	var createdAt sql.NullTime
	if err := row.Scan(&req.ID, &req.FamilySize, &req.RoomCount, &req.FloorAreaSqm,
		&req.Budget, &req.Preferences, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning request: %w", domain.ErrStorage, err)
	}
	if createdAt.Valid {
		req.CreatedAt = createdAt.Time
	}
	return &req, nil
}

// TopNSimilar ranks every stored segment by cosine similarity to query.
// Segments whose embedding cannot be compared with query are skipped.
func (s *Store) TopNSimilar(ctx context.Context, query []float32, n int) ([]domain.RetrievedPlan, error) {
	if n <= 0 {
		return []domain.RetrievedPlan{}, nil
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT storage_path, filename, score FROM (
			SELECT storage_path, filename, vec_cosine(embedding, ?) AS score, created_at
			FROM floorplans
		)
		WHERE score IS NOT NULL
		ORDER BY score DESC, created_at ASC
		LIMIT ?
	`, encodeVector(query), n)
	if err != nil {
		return nil, fmt.Errorf("%w: querying similar plans: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	plans := make([]domain.RetrievedPlan, 0, n)
	for rows.Next() {
		var plan domain.RetrievedPlan
		if err := rows.Scan(&plan.StoragePath, &plan.Filename, &plan.Score); err != nil {
			return nil, fmt.Errorf("%w: scanning plan: %w", domain.ErrStorage, err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating plans: %w", domain.ErrStorage, err)
	}

	return plans, nil
}

// CountSegments returns the number of stored segments and distinct documents.
func (s *Store) CountSegments(ctx context.Context) (segments, documents int, err error) {
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(DISTINCT storage_path) FROM floorplans")
	if err := row.Scan(&segments, &documents); err != nil {
		return 0, 0, fmt.Errorf("%w: counting segments: %w", domain.ErrStorage, err)
	}
	return segments, documents, nil
}
