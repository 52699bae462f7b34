package pgvector

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

	"github.com/Aleph-Alpha/recordstore/v1/logger"
	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// PgvectorContainer represents a Postgres container with the pgvector
// extension available, for testing.
type PgvectorContainer struct {
	testcontainers.Container
	Config Config
	Host   string
	Port   string
}

// setupPgvectorContainer starts a pgvector-enabled Postgres container.
func setupPgvectorContainer(ctx context.Context) (*PgvectorContainer, error) {
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
	cfg.Connection = Connection{
		Host:     host,
		Port:     portStr,
		User:     "testuser",
		Password: "testpass",
		DbName:   "testdb",
		SSLMode:  "disable",
	}

	return &PgvectorContainer{
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

func documentSchema(t *testing.T) *record.Schema {
	t.Helper()
	schema, err := record.NewSchema("documents",
		&record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindString}},
		&record.DataProperty{Name: "title", Type: record.Type{Kind: record.KindString}, Indexed: true},
		&record.DataProperty{Name: "tags", Type: record.ListOf(record.Type{Kind: record.KindString})},
		&record.DataProperty{Name: "views", Type: record.Type{Kind: record.KindInt64}},
		&record.VectorProperty{Name: "embedding", Dimensions: 3, Distance: record.EuclideanDistance, Index: record.IndexHNSW},
	)
	require.NoError(t, err)
	return schema
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

func TestPgvectorCollectionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := setupPgvectorContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	cfg := pgContainer.Config
	cfg.MaxRowsPerBatch = 2 // force chunking in the batch tests

	store, err := NewStore(ctx, cfg, newTestLogger(t))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.EnsureVectorExtension(ctx))
	require.NoError(t, store.HealthCheck(ctx))

	docs := store.Collection(documentSchema(t))

	t.Run("TableLifecycle", func(t *testing.T) {
		exists, err := docs.TableExists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, docs.EnsureTable(ctx))
		require.NoError(t, docs.EnsureIndexes(ctx))

		exists, err = docs.TableExists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		// Creating again must be a no-op.
		require.NoError(t, docs.EnsureTable(ctx))
	})

	t.Run("UpsertAndGet", func(t *testing.T) {
		err := docs.Upsert(ctx, record.Row{
			"id":        "doc-1",
			"title":     "intro",
			"tags":      []string{"go", "db"},
			"views":     int64(10),
			"embedding": []float32{1, 0, 0},
		})
		require.NoError(t, err)

		row, err := docs.Get(ctx, "doc-1", false)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "intro", row["title"])
		assert.Equal(t, int64(10), row["views"])
		assert.NotContains(t, row, "embedding")

		// Second upsert with the same key must update, not duplicate.
		err = docs.Upsert(ctx, record.Row{
			"id":        "doc-1",
			"title":     "introduction",
			"tags":      []string{"go"},
			"views":     int64(11),
			"embedding": []float32{1, 0, 0},
		})
		require.NoError(t, err)

		row, err = docs.Get(ctx, "doc-1", true)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "introduction", row["title"])
		assert.Equal(t, []float32{1, 0, 0}, row["embedding"])

		missing, err := docs.Get(ctx, "no-such-key", false)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("BatchOperations", func(t *testing.T) {
		rows := []record.Row{
			{"id": "doc-2", "title": "alpha", "tags": []string{"go"}, "views": int64(1), "embedding": []float32{0, 1, 0}},
			{"id": "doc-3", "title": "beta", "tags": []string{"db"}, "views": int64(2), "embedding": []float32{1, 1, 0}},
			{"id": "doc-4", "title": "gamma", "tags": []string{"go", "db"}, "views": int64(3), "embedding": []float32{0, 0, 1}},
			{"id": "doc-5", "title": "delta", "tags": []string{}, "views": int64(4), "embedding": []float32{1, 0, 1}},
			{"id": "doc-6", "title": "epsilon", "tags": []string{"misc"}, "views": int64(5), "embedding": []float32{0, 1, 1}},
		}
		require.NoError(t, docs.UpsertBatch(ctx, rows))

		fetched, err := docs.GetBatch(ctx, []any{"doc-2", "doc-4", "no-such-key"}, false)
		require.NoError(t, err)
		assert.Len(t, fetched, 2)

		require.NoError(t, docs.DeleteBatch(ctx, []any{"doc-5", "doc-6"}))
		fetched, err = docs.GetBatch(ctx, []any{"doc-5", "doc-6"}, false)
		require.NoError(t, err)
		assert.Empty(t, fetched)

		// Empty batches are no-ops.
		require.NoError(t, docs.UpsertBatch(ctx, nil))
		require.NoError(t, docs.DeleteBatch(ctx, nil))
	})

	t.Run("Find", func(t *testing.T) {
		rows, err := docs.Find(ctx, FindRequest{
			Filter: record.NewFilter(record.NewAnyTagEqualTo("tags", "go")),
			Sorts:  []record.Sort{record.Ascending("views")},
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "doc-2", rows[0]["id"])
		assert.Equal(t, "doc-4", rows[1]["id"])

		rows, err = docs.Find(ctx, FindRequest{
			Filter: record.NewFilter(record.NewEqualToAny("id", "doc-1", "doc-3")),
			Sorts:  []record.Sort{record.Descending("views")},
			Limit:  1,
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "doc-1", rows[0]["id"])
	})

	t.Run("Search", func(t *testing.T) {
		results, err := docs.Search(ctx, SearchRequest{
			Vector: []float32{1, 0, 0},
			Limit:  3,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)

		matches := results[0]
		require.NotEmpty(t, matches)
		assert.Equal(t, "doc-1", matches[0].Row["id"])
		assert.InDelta(t, 0.0, matches[0].Score, 1e-6)
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i].Score, matches[i-1].Score)
		}

		// Filtered search plus pagination.
		results, err = docs.Search(ctx, SearchRequest{
			Vector:         []float32{1, 0, 0},
			Limit:          2,
			Filter:         record.NewFilter(record.NewAnyTagEqualTo("tags", "go")),
			IncludeVectors: true,
		})
		require.NoError(t, err)
		for _, match := range results[0] {
			assert.Contains(t, match.Row, "embedding")
		}

		// Multiple requests fan out and come back in request order.
		results, err = docs.Search(ctx,
			SearchRequest{Vector: []float32{1, 0, 0}, Limit: 1},
			SearchRequest{Vector: []float32{0, 1, 0}, Limit: 1},
		)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "doc-1", results[0][0].Row["id"])
		assert.Equal(t, "doc-2", results[1][0].Row["id"])
	})

	t.Run("CosineSimilarityScores", func(t *testing.T) {
		schema, err := record.NewSchema("notes",
			&record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindInt64}},
			&record.VectorProperty{Name: "embedding", Dimensions: 3, Distance: record.CosineSimilarity, Index: record.IndexFlat},
		)
		require.NoError(t, err)

		notes := store.Collection(schema)
		require.NoError(t, notes.EnsureTable(ctx))
		require.NoError(t, notes.UpsertBatch(ctx, []record.Row{
			{"id": int64(1), "embedding": []float32{1, 0, 0}},
			{"id": int64(2), "embedding": []float32{0, 1, 0}},
		}))

		results, err := notes.Search(ctx, SearchRequest{Vector: []float32{1, 0, 0}, Limit: 2})
		require.NoError(t, err)

		matches := results[0]
		require.Len(t, matches, 2)
		assert.Equal(t, int64(1), matches[0].Row["id"])
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
		assert.InDelta(t, 0.0, matches[1].Score, 1e-6)

		require.NoError(t, notes.Drop(ctx))
	})

	t.Run("Drop", func(t *testing.T) {
		require.NoError(t, docs.Drop(ctx))
		exists, err := docs.TableExists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		// Dropping an absent table stays a no-op.
		require.NoError(t, docs.Drop(ctx))
	})
}

// TestPgvectorWithFXModule wires the store through the FX module the way an
// application would.
func TestPgvectorWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := setupPgvectorContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	var store *Store
	app := fxtest.New(t,
		fx.Provide(
			func() Config { return pgContainer.Config },
			func() *logger.Logger {
				return logger.NewLoggerClient(logger.Config{Level: logger.Debug, ServiceName: "pgvector-test"})
			},
		),
		FXModule,
		fx.Populate(&store),
	)

	err = app.Start(ctx)
	require.NoError(t, err)
	defer app.RequireStop()

	require.NotNil(t, store)
	assert.NoError(t, store.HealthCheck(ctx))
}
