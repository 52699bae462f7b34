// Package sqlitevec provides a SQLite-backed record store with vector
// similarity search through the sqlite-vec extension.
//
// The package mirrors the layering of the pgvector store: a builder layer
// synthesizes SQL commands from a record schema and returns them as
// *record.Command values that can be inspected and tested without a
// database, and a store layer executes those commands on a database/sql
// handle backed by the WASM build of SQLite (ncruces/go-sqlite3) with
// sqlite-vec linked in.
//
// # Dialect Differences
//
// The synthesized SQL differs from the Postgres store where the engines
// differ:
//
//   - Placeholders are ?1..?n instead of $1..$n.
//   - There is no schema qualification; tables live in the single database
//     file.
//   - SQLite has no array columns, so list-typed properties and the
//     AnyTagEqualTo predicate are unsupported. Multi-key operations bind one
//     placeholder per key in an IN list instead of an array parameter.
//   - Embeddings are stored as little-endian float32 blobs and ranked with
//     the exact vec_distance_l2 and vec_distance_cosine functions. Cosine
//     similarity wraps the ordered query in a subquery projecting
//     1 - distance. Manhattan distance and dot product have no sqlite-vec
//     realization and are rejected, as are the approximate index kinds.
//   - A null equality comparison renders as IS NULL.
//
// # Usage
//
//	store, err := sqlitevec.NewStore(ctx, sqlitevec.Config{Path: "records.db"}, log)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	docs := store.Collection(schema)
//	if err := docs.EnsureTable(ctx); err != nil {
//	    return err
//	}
//
//	results, err := docs.Search(ctx, sqlitevec.SearchRequest{
//	    Vector: queryEmbedding,
//	    Limit:  10,
//	})
//
// The store is well suited to tests and single-process deployments; the
// pgvector store is the production-scale counterpart with the same
// operation surface.
package sqlitevec
