package sqlitevec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// Logger defines the interface for logging operations in the sqlitevec
// package. This interface allows the package to use any logging
// implementation that conforms to these methods.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=sqlitevec
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// MetricsRecorder is the subset of the metrics collector the store reports to.
// The *metrics.Metrics type of this module satisfies it.
type MetricsRecorder interface {
	IncrementOperations(store, collection, operation, status string)
	RecordOperationDuration(start time.Time, store, collection, operation string)
	AddRowsWritten(count int, store, collection string)
}

// Store wraps a SQLite database with the sqlite-vec extension compiled in
// and synthesizes collections bound to record schemas. All commands it
// executes are produced by the builders in this package.
type Store struct {
	db     *sql.DB
	cfg    Config
	logger Logger

	metrics MetricsRecorder
}

// NewStore opens the database file, switches it to WAL journaling and
// validates the connection with a ping. The sqlite-vec distance functions
// are available on every connection through the linked extension; no
// external setup is needed.
//
// Returns *Store ("accept interfaces, return structs").
func NewStore(ctx context.Context, cfg Config, logger Logger) (*Store, error) {
	cfg = cfg.withDefaults()

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %q: %w", cfg.Path, err)
	}

	// An in-memory database exists per connection; pooling beyond one
	// connection would scatter the data.
	if strings.Contains(cfg.Path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL on %q: %w", cfg.Path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite database %q: %w", cfg.Path, err)
	}

	logger.Info("opened sqlitevec database", nil, map[string]interface{}{
		"path": cfg.Path,
	})

	return &Store{db: db, cfg: cfg, logger: logger}, nil
}

// WithMetrics attaches a metrics recorder to the store. Operation counts,
// durations and written row counts are reported to it.
func (s *Store) WithMetrics(m MetricsRecorder) *Store {
	s.metrics = m
	return s
}

// DB returns the underlying database handle for direct access to low-level
// operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Collection binds a schema to the store, yielding the typed operation
// surface for one table.
func (s *Store) Collection(schema *record.Schema) *Collection {
	return &Collection{store: s, schema: schema}
}

// HealthCheck verifies the database connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close releases the database handle. The store must not be used afterwards.
func (s *Store) Close() error {
	return s.db.Close()
}
