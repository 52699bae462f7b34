package memstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Logger defines the interface for logging operations within the memstore
// package. It provides methods for different logging levels to track
// database operations, connection status, and error handling.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=memstore
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// MemoryStore is the legacy memory-record surface on a Postgres database
// with the pgvector extension. It holds the live gorm handle in an atomic
// pointer so the reconnection loop can swap it without blocking readers,
// and includes mechanisms for graceful shutdown and connection health
// monitoring.
type MemoryStore struct {
	client atomic.Pointer[gorm.DB]

	cfg    Config
	logger Logger

	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeRetryChanOnce sync.Once
	closeShutdownOnce  sync.Once
}

// NewMemoryStore creates a new MemoryStore with the provided configuration
// and Logger. It establishes the initial database connection and sets up the
// internal state for connection monitoring and recovery.
func NewMemoryStore(cfg Config, logger Logger) (*MemoryStore, error) {
	cfg = cfg.withDefaults()

	conn, err := connectToPostgres(logger, cfg)
	if err != nil {
		return nil, err
	}

	store := &MemoryStore{
		cfg:             cfg,
		logger:          logger,
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}
	store.client.Store(conn)
	return store, nil
}

// connectToPostgres establishes a connection to the PostgreSQL database using
// the provided configuration. It opens the connection with GORM and
// configures the connection pool. Returns the initialized GORM DB instance
// or an error if the connection fails.
func connectToPostgres(logger Logger, cfg Config) (*gorm.DB, error) {
	pgConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Connection.Host,
		cfg.Connection.Port,
		cfg.Connection.User,
		cfg.Connection.Password,
		cfg.Connection.DbName,
		cfg.Connection.SSLMode)

	database, err := gorm.Open(
		postgres.Open(pgConnStr),
		&gorm.Config{
			TranslateError: true,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	databaseInstance, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL database instance: %w", err)
	}

	databaseInstance.SetMaxOpenConns(cfg.ConnectionDetails.MaxOpenConns)
	databaseInstance.SetMaxIdleConns(cfg.ConnectionDetails.MaxIdleConns)
	databaseInstance.SetConnMaxLifetime(cfg.ConnectionDetails.ConnMaxLifetime)

	logger.Info("Successfully connected to PostgreSQL database", nil, nil)

	return database, nil
}

// db returns the live gorm handle bound to the given context.
func (m *MemoryStore) db(ctx context.Context) *gorm.DB {
	return m.client.Load().WithContext(ctx)
}

// EnsureVectorExtension installs the pgvector extension if it is not present
// yet. The connected role needs the privilege to create extensions.
func (m *MemoryStore) EnsureVectorExtension(ctx context.Context) error {
	if err := m.db(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("ensuring vector extension: %w", TranslateError(err))
	}
	return nil
}

// RetryConnection continuously attempts to reconnect to the database when
// notified of a connection failure. It operates as a goroutine that waits
// for signals on retryChanSignal before attempting reconnection, and
// respects context cancellation and shutdown signals.
func (m *MemoryStore) RetryConnection(ctx context.Context, logger Logger) {
outerLoop:
	for {
		select {
		case <-m.shutdownSignal:
			logger.Info("Stopping RetryConnection loop due to shutdown signal", nil, nil)
			return
		case <-ctx.Done():
			return
		case <-m.retryChanSignal:
		innerLoop:
			for {
				select {
				case <-m.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newConn, err := connectToPostgres(logger, m.cfg)
					if err != nil {
						logger.Error("Reconnection failed", err, nil)
						time.Sleep(time.Second)
						continue innerLoop
					}
					m.client.Store(newConn)
					logger.Info("Reconnected to PostgreSQL database", nil, nil)
					continue outerLoop
				}
			}
		}
	}
}

// MonitorConnection periodically checks the health of the database
// connection and signals the RetryConnection goroutine when a failure is
// detected. It runs as a goroutine and performs health checks every 10
// seconds until the context is cancelled or the store shuts down.
func (m *MemoryStore) MonitorConnection(ctx context.Context) {
	defer m.closeRetryChanOnce.Do(func() {
		close(m.retryChanSignal)
	})

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.shutdownSignal:
			m.logger.Info("Stopping MonitorConnection loop due to shutdown signal", nil, nil)
			return
		case <-ticker.C:
			if err := m.HealthCheck(); err != nil {
				select {
				case m.retryChanSignal <- err:
				default:
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// HealthCheck pings the database with a 5 second timeout to verify
// connectivity.
func (m *MemoryStore) HealthCheck() error {
	client := m.client.Load()
	if client == nil {
		return fmt.Errorf("database client is not initialized")
	}

	db, err := client.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance during health check: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed during health check: %w", err)
	}

	return nil
}

// Shutdown signals the monitoring goroutines to stop and closes the
// database handle.
func (m *MemoryStore) Shutdown() error {
	m.closeShutdownOnce.Do(func() {
		close(m.shutdownSignal)
	})

	client := m.client.Load()
	if client == nil {
		return nil
	}
	db, err := client.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance during shutdown: %w", err)
	}
	return db.Close()
}
