// Package pgvector provides a Postgres-backed record store with vector
// similarity search through the pgvector extension.
//
// The package has two layers. The builder layer synthesizes SQL commands
// from a record schema: table and index DDL, single and batch upserts,
// key lookups, filtered scans and nearest-neighbor queries. Every builder
// returns a *record.Command holding the statement text and its positional
// parameters, so the synthesized SQL can be inspected and tested without a
// database. The store layer executes those commands on a pgx connection
// pool and decodes result rows back into record.Row values.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                    Collection (per schema)               │
//	│  EnsureTable · Upsert(Batch) · Get(Batch) · Delete(Batch)│
//	│            Find · Search · Drop · TableExists            │
//	└──────────────┬───────────────────────────┬───────────────┘
//	               │ record.Command            │ record.Row
//	┌──────────────▼───────────────┐  ┌────────▼───────────────┐
//	│  command_builder / filter_   │  │  Store (pgxpool.Pool)  │
//	│  translator / vector_search  │  │  exec · query · scan   │
//	└──────────────────────────────┘  └────────────────────────┘
//
// # Command Synthesis
//
// Identifiers are always double-quoted; values are always bound as
// positional parameters ($1..$n), with two deliberate exceptions: LIMIT and
// OFFSET are inlined as validated integers, and an equality comparison
// against nil is inlined as "= NULL". Nearest-neighbor queries reserve $1
// for the query vector and number filter parameters from $2.
//
// The distance operator follows the vector property's distance function:
// <-> for Euclidean (the default), <=> for cosine, <#> for inner product
// and <+> for Manhattan. Cosine similarity and dot product are computed by
// wrapping the ordered query in a subquery that projects 1 - distance
// (respectively -1 * distance), so the inner ORDER BY stays on the bare
// operator expression and remains servable from an hnsw or ivfflat index.
//
// # Direct Usage (Without FX)
//
//	import (
//	    "github.com/Aleph-Alpha/recordstore/v1/pgvector"
//	    "github.com/Aleph-Alpha/recordstore/v1/record"
//	)
//
//	schema, err := record.NewSchema("documents",
//	    &record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindString}},
//	    &record.DataProperty{Name: "title", Type: record.Type{Kind: record.KindString}, Indexed: true},
//	    &record.VectorProperty{Name: "embedding", Dimensions: 768, Index: record.IndexHNSW},
//	)
//	if err != nil {
//	    return err
//	}
//
//	store, err := pgvector.NewStore(ctx, cfg, log)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	docs := store.Collection(schema)
//	if err := docs.EnsureTable(ctx); err != nil {
//	    return err
//	}
//	if err := docs.EnsureIndexes(ctx); err != nil {
//	    return err
//	}
//
//	err = docs.Upsert(ctx, record.Row{
//	    "id":        "doc-1",
//	    "title":     "intro",
//	    "embedding": embedding,
//	})
//
//	results, err := docs.Search(ctx, pgvector.SearchRequest{
//	    Vector: queryEmbedding,
//	    Limit:  10,
//	    Filter: record.NewFilter(record.NewEqualTo("title", "intro")),
//	})
//
// # FX Module Integration
//
// For applications using Uber's fx, FXModule provides the *Store and closes
// its pool on shutdown; see fx_module.go for the required dependencies.
//
// # Observability
//
// Operations open OpenTelemetry spans named pgvector.<operation> through the
// global tracer provider (see the tracer package of this module for setup)
// and, when a MetricsRecorder is attached with WithMetrics, report counts,
// durations and written row totals.
package pgvector
