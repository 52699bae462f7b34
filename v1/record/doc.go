// Package record defines the database-agnostic model shared by all record
// store dialects: the schema of a typed record collection, the closed filter
// condition tree, and the Command contract produced by the SQL synthesis
// engines.
//
// # Overview
//
// A [Schema] describes one record type as an ordered list of properties:
// exactly one [KeyProperty], any number of scalar [DataProperty] entries, and
// any number of [VectorProperty] entries carrying dimensionality, distance
// metric, and index strategy. Schemas are validated on construction and
// immutable afterwards, so they can be shared freely across goroutines.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                   Collection façade                         │
//	│        (pgvector.Collection / sqlitevec.Collection)         │
//	└──────────────┬─────────────────────────────┬────────────────┘
//	               │ record.Schema, record.Filter│
//	               ▼                             ▼
//	┌───────────────────────────┐  ┌───────────────────────────┐
//	│  pgvector synthesis engine│  │ sqlitevec synthesis engine│
//	│  (builders + translator)  │  │  (builders + translator)  │
//	└──────────────┬────────────┘  └─────────────┬─────────────┘
//	               │        record.Command       │
//	               ▼                             ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│               Driver layer (pgx / sqlite3)                  │
//	└─────────────────────────────────────────────────────────────┘
//
// # Command contract
//
// Every operation a store supports is synthesized as a [Command]: SQL text
// with strictly positional placeholders, plus the parameter list ordered 1:1
// with those placeholders. No untrusted value is ever interpolated into the
// text; the only identifiers that appear are the schema-controlled table and
// column names, quoted per dialect.
//
// # Filters
//
// Filtering uses a small closed condition tree ([EqualTo], [AnyTagEqualTo],
// [EqualToAny]) combined with AND semantics through [Filter]. Callers are
// responsible for lowering richer predicate representations into this tree;
// translation errors ([ErrUnresolvedProperty], [ErrUnsupportedPredicateShape])
// are raised at command-build time, never at execution time.
package record
