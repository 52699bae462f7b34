package pgvector

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// Logger defines the interface for logging operations in the pgvector package.
// This interface allows the package to use any logging implementation that
// conforms to these methods.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=pgvector
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

// Store wraps a pgx connection pool and synthesizes collections bound to
// record schemas. All commands it executes are produced by the builders in
// this package.
//
// The Store is safe for concurrent use; pgxpool handles connection checkout
// internally.
type Store struct {
	pool    *pgxpool.Pool
	cfg     Config
	logger  Logger
	metrics MetricsRecorder
}

// NewStore connects to Postgres and validates the connection with a ping.
//
// Parameters:
//   - ctx: Context for the initial connect and ping
//   - cfg: Connection and behavior settings; zero-valued tuning fields are defaulted
//   - logger: Logger for connection and operation events
//
// Returns *Store ("accept interfaces, return structs"). The pgvector
// extension must be installed on the target database; EnsureTable fails
// otherwise when a schema carries vector properties.
func NewStore(ctx context.Context, cfg Config, logger Logger) (*Store, error) {
	cfg = cfg.withDefaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("parsing pgvector connection config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating pgvector connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging pgvector database: %w", err)
	}

	logger.Info("connected to pgvector database", nil, map[string]interface{}{
		"host":      cfg.Connection.Host,
		"database":  cfg.Connection.DbName,
		"db_schema": cfg.DBSchema,
	})

	return &Store{pool: pool, cfg: cfg, logger: logger}, nil
}

// WithMetrics attaches a metrics recorder to the store. Operation counts,
// durations and written row counts are reported to it.
func (s *Store) WithMetrics(m MetricsRecorder) *Store {
	s.metrics = m
	return s
}

// Pool returns the underlying pgx connection pool for direct access to
// low-level operations.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Collection binds a schema to the store, yielding the typed operation
// surface for one table.
func (s *Store) Collection(schema *record.Schema) *Collection {
	return &Collection{store: s, schema: schema}
}

// EnsureVectorExtension installs the pgvector extension on the connected
// database if it is not present yet. Requires a role with the CREATE
// privilege; run once before the first EnsureTable on a fresh database.
func (s *Store) EnsureVectorExtension(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("creating pgvector extension: %w", err)
	}
	return nil
}

// HealthCheck verifies the database connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases the connection pool. The store must not be used afterwards.
func (s *Store) Close() {
	s.pool.Close()
}
