// Package memstore provides the legacy memory-record surface on a Postgres
// database with the pgvector extension. It predates the schema-driven
// collections of v1/pgvector and exists for callers that still address
// memories by collection name and the fixed MemoryRecord shape; new code
// should use v1/pgvector directly.
//
// Every collection is one table with the same layout: the record key, the
// text and provenance metadata columns, an optional timestamp and the
// embedding. Operations lower through the v1/pgvector command builders and
// execute on a gorm handle, so the SQL this package runs is exactly the SQL
// the v1 engine synthesizes. Nearest-match queries score with cosine
// similarity, the metric the legacy callers expect, and drop matches below
// the caller's relevance floor.
//
// The store monitors its connection and reconnects automatically; the live
// gorm handle is held in an atomic pointer so a reconnect never blocks
// in-flight operations.
//
// Usage:
//
//	cfg := memstore.DefaultConfig()
//	cfg.Connection = memstore.Connection{
//	    Host: "localhost", Port: "5432",
//	    User: "postgres", Password: "postgres",
//	    DbName: "memories", SSLMode: "disable",
//	}
//	cfg.Dimensions = 1536
//
//	store, err := memstore.NewMemoryStore(cfg, log)
//	if err != nil {
//	    log.Fatal("failed to open memory store", err, nil)
//	}
//	defer store.Shutdown()
//
//	if err := store.CreateCollection(ctx, "facts"); err != nil { ... }
//	key, err := store.Upsert(ctx, "facts", memstore.MemoryRecord{
//	    ID:        "fact-1",
//	    Text:      "the capital of France is Paris",
//	    Embedding: embedding,
//	})
//	matches, err := store.GetNearestMatches(ctx, "facts", query, 5, 0.7, false)
//
// With Fx, supply a Config and a Logger and include FXModule; the module
// starts the connection monitoring goroutines and shuts the store down with
// the application.
package memstore
