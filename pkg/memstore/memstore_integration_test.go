package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
)

// MemstoreContainer represents a Postgres container with the pgvector
// extension available, for testing.
type MemstoreContainer struct {
	testcontainers.Container
	Config Config
	Host   string
	Port   string
}

// setupMemstoreContainer starts a pgvector-enabled Postgres container.
func setupMemstoreContainer(ctx context.Context) (*MemstoreContainer, error) {
	// Get a random free port
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	portBindings := nat.PortMap{
		"5432/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	req := testcontainers.ContainerRequest{
		Image: "pgvector/pgvector:pg16",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start pgvector container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	// Double-check port mapping (could be different from requested)
	mappedPort, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}
	portStr = mappedPort.Port()

	if err := waitForPostgresReady(host, portStr, "testuser", "testpass", "testdb", 30*time.Second); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("pgvector container not ready: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Dimensions = 3
	cfg.Connection = Connection{
		Host:     host,
		Port:     portStr,
		User:     "testuser",
		Password: "testpass",
		DbName:   "testdb",
		SSLMode:  "disable",
	}

	return &MemstoreContainer{
		Container: pgContainer,
		Config:    cfg,
		Host:      host,
		Port:      portStr,
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func(addr net.Listener) {
		if err := addr.Close(); err != nil {
			fmt.Printf("Failed to close listener: %v", err)
		}
	}(addr)

	return addr.Addr().(*net.TCPAddr).Port, nil
}

// waitForPostgresReady polls the database until it accepts queries.
func waitForPostgresReady(host, port, user, password, dbname string, timeout time.Duration) error {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		db, err := sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("database not ready after %s", timeout)
}

// TestMain sets up the testing environment
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

func newTestLogger(t *testing.T) *MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Fatal(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(msg string, err error, fields ...map[string]interface{}) {
			t.Logf("FATAL: %s, Error: %v", msg, err)
		}).AnyTimes()
	return mockLogger
}

func TestMemoryStoreLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := setupMemstoreContainer(ctx)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	}()

	store, err := NewMemoryStore(pgContainer.Config, newTestLogger(t))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Shutdown())
	}()

	require.NoError(t, store.EnsureVectorExtension(ctx))
	require.NoError(t, store.HealthCheck())

	const collection = "memories"

	t.Run("CollectionLifecycle", func(t *testing.T) {
		exists, err := store.DoesCollectionExist(ctx, collection)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, store.CreateCollection(ctx, collection))
		require.NoError(t, store.CreateCollection(ctx, collection)) // idempotent

		exists, err = store.DoesCollectionExist(ctx, collection)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("UpsertAndGet", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		key, err := store.Upsert(ctx, collection, MemoryRecord{
			ID:                 "mem-1",
			Text:               "the capital of France is Paris",
			Description:        "geography fact",
			AdditionalMetadata: `{"source":"atlas"}`,
			ExternalSourceName: "atlas",
			IsReference:        true,
			Timestamp:          &now,
			Embedding:          []float32{1, 0, 0},
		})
		require.NoError(t, err)
		assert.Equal(t, "mem-1", key)

		rec, err := store.Get(ctx, collection, "mem-1", true)
		require.NoError(t, err)
		assert.Equal(t, "the capital of France is Paris", rec.Text)
		assert.Equal(t, "geography fact", rec.Description)
		assert.Equal(t, "atlas", rec.ExternalSourceName)
		assert.True(t, rec.IsReference)
		require.NotNil(t, rec.Timestamp)
		assert.True(t, now.Equal(*rec.Timestamp))
		assert.Equal(t, []float32{1, 0, 0}, rec.Embedding)

		// Without the flag the embedding stays out of the projection.
		rec, err = store.Get(ctx, collection, "mem-1", false)
		require.NoError(t, err)
		assert.Nil(t, rec.Embedding)

		_, err = store.Get(ctx, collection, "mem-unknown", false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("BatchOperations", func(t *testing.T) {
		keys, err := store.UpsertBatch(ctx, collection, []MemoryRecord{
			{ID: "mem-2", Text: "water boils at 100C", Embedding: []float32{0, 1, 0}},
			{ID: "mem-3", Text: "the sky is blue", Embedding: []float32{0, 0, 1}},
			{ID: "mem-4", Text: "paris hosts the louvre", Embedding: []float32{1, 0.1, 0}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"mem-2", "mem-3", "mem-4"}, keys)

		records, err := store.GetBatch(ctx, collection, []string{"mem-2", "mem-4", "mem-nope"}, false)
		require.NoError(t, err)
		assert.Len(t, records, 2)

		empty, err := store.UpsertBatch(ctx, collection, nil)
		require.NoError(t, err)
		assert.Nil(t, empty)

		require.NoError(t, store.RemoveBatch(ctx, collection, []string{"mem-3"}))
		records, err = store.GetBatch(ctx, collection, []string{"mem-3"}, false)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("NearestMatches", func(t *testing.T) {
		matches, err := store.GetNearestMatches(ctx, collection, []float32{1, 0, 0}, 10, 0, false)
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		assert.Equal(t, "mem-1", matches[0].Record.ID)
		assert.InDelta(t, 1, matches[0].Relevance, 1e-6)
		assert.Nil(t, matches[0].Record.Embedding)

		// A high relevance floor drops the orthogonal entries.
		matches, err = store.GetNearestMatches(ctx, collection, []float32{1, 0, 0}, 10, 0.9, false)
		require.NoError(t, err)
		for _, match := range matches {
			assert.GreaterOrEqual(t, match.Relevance, 0.9)
		}

		best, err := store.GetNearestMatch(ctx, collection, []float32{0, 1, 0}, 0.5, true)
		require.NoError(t, err)
		assert.Equal(t, "mem-2", best.Record.ID)
		assert.NotNil(t, best.Record.Embedding)

		_, err = store.GetNearestMatch(ctx, collection, []float32{0, 1, 0}, 1.1, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRecordNotFound)

		_, err = store.GetNearestMatches(ctx, collection, []float32{1, 0}, 10, 0, false)
		require.Error(t, err)
	})

	t.Run("RemoveAndDeleteCollection", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, collection, "mem-1"))
		_, err := store.Get(ctx, collection, "mem-1", false)
		assert.ErrorIs(t, err, ErrRecordNotFound)

		require.NoError(t, store.DeleteCollection(ctx, collection))
		exists, err := store.DoesCollectionExist(ctx, collection)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, store.DeleteCollection(ctx, collection)) // idempotent
	})
}

func TestMemoryStoreWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := setupMemstoreContainer(ctx)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	}()

	var store *MemoryStore
	app := fxtest.New(t,
		FXModule,
		fx.Supply(pgContainer.Config),
		fx.Provide(func() Logger { return newTestLogger(t) }),
		fx.Populate(&store),
	)
	app.RequireStart()

	require.NotNil(t, store)
	require.NoError(t, store.HealthCheck())

	app.RequireStop()
}
