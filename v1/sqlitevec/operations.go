package sqlitevec

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

//
// ──────────────────────────────────────────────────────────────
//   COLLECTION OPERATIONS
// ──────────────────────────────────────────────────────────────
//
// This file defines the operation surface of a collection: one schema bound
// to one table. Every statement executed here is synthesized by the builders
// in command_builder.go and vector_search.go; this layer only binds
// parameters, runs the command on the database handle and decodes the
// result rows.
//

const storeName = "sqlitevec"

const tracerName = "github.com/Aleph-Alpha/recordstore/v1/sqlitevec"

// Collection is the typed operation surface for one schema on one store.
// Collections are cheap, stateless handles; create them freely.
type Collection struct {
	store  *Store
	schema *record.Schema
}

// Schema returns the bound schema.
func (c *Collection) Schema() *record.Schema { return c.schema }

// instrument opens a span for an operation and returns a completion callback
// that records the outcome on the span, the metrics recorder and the logger.
func (c *Collection) instrument(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, storeName+"."+op)
	start := time.Now()

	return ctx, func(err error) {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.store.logger.Error("sqlitevec operation failed", err, map[string]interface{}{
				"collection": c.schema.Name(),
				"operation":  op,
			})
		}
		if c.store.metrics != nil {
			c.store.metrics.IncrementOperations(storeName, c.schema.Name(), op, status)
			c.store.metrics.RecordOperationDuration(start, storeName, c.schema.Name(), op)
		}
		span.End()
	}
}

func (c *Collection) exec(ctx context.Context, cmd *record.Command) error {
	_, err := c.store.db.ExecContext(ctx, cmd.Text, cmd.Args()...)
	return err
}

// EnsureTable creates the collection's table if it does not exist yet.
func (c *Collection) EnsureTable(ctx context.Context) (err error) {
	ctx, done := c.instrument(ctx, "ensure_table")
	defer func() { done(err) }()

	cmd, err := BuildCreateTable(c.schema, true)
	if err != nil {
		return err
	}
	if err = c.exec(ctx, cmd); err != nil {
		return fmt.Errorf("creating table %q: %w", c.schema.Name(), err)
	}

	c.store.logger.Debug("ensured collection table", nil, map[string]interface{}{
		"collection": c.schema.Name(),
	})
	return nil
}

// EnsureIndexes creates the indexes for the indexed data properties. Vector
// properties with IndexFlat need no index structure; declaring an
// approximate index kind fails with ErrUnsupportedIndexKind because
// sqlite-vec searches are exact scans.
func (c *Collection) EnsureIndexes(ctx context.Context) (err error) {
	ctx, done := c.instrument(ctx, "ensure_indexes")
	defer func() { done(err) }()

	for _, vp := range c.schema.Vectors() {
		if vp.Index == record.IndexFlat {
			continue
		}
		if _, err = BuildCreateVectorIndex(c.schema, vp); err != nil {
			return err
		}
	}

	for _, p := range c.schema.Properties() {
		dp, ok := p.(*record.DataProperty)
		if !ok || !dp.Indexed {
			continue
		}
		cmd := BuildCreateDataIndex(c.schema, dp, true)
		if err = c.exec(ctx, cmd); err != nil {
			return fmt.Errorf("creating index on %q: %w", dp.ColumnName(), err)
		}
	}
	return nil
}

// TableExists reports whether the collection's table is present.
func (c *Collection) TableExists(ctx context.Context) (exists bool, err error) {
	ctx, done := c.instrument(ctx, "table_exists")
	defer func() { done(err) }()

	cmd := BuildTableExists(c.schema)
	rows, err := c.store.db.QueryContext(ctx, cmd.Text, cmd.Args()...)
	if err != nil {
		return false, fmt.Errorf("probing table %q: %w", c.schema.Name(), err)
	}
	defer rows.Close()

	exists = rows.Next()
	if err = rows.Err(); err != nil {
		return false, fmt.Errorf("probing table %q: %w", c.schema.Name(), err)
	}
	return exists, nil
}

// Drop removes the collection's table and its indexes. Dropping an absent
// table is a no-op.
func (c *Collection) Drop(ctx context.Context) (err error) {
	ctx, done := c.instrument(ctx, "drop")
	defer func() { done(err) }()

	if err = c.exec(ctx, BuildDropTable(c.schema)); err != nil {
		return fmt.Errorf("dropping table %q: %w", c.schema.Name(), err)
	}
	return nil
}

// Upsert inserts the row, or updates its non-key columns when the key is
// already present.
func (c *Collection) Upsert(ctx context.Context, row record.Row) (err error) {
	ctx, done := c.instrument(ctx, "upsert")
	defer func() { done(err) }()

	cmd, err := BuildUpsert(c.schema, row)
	if err != nil {
		return err
	}
	if err = c.exec(ctx, cmd); err != nil {
		return fmt.Errorf("upserting into %q: %w", c.schema.Name(), err)
	}

	if c.store.metrics != nil {
		c.store.metrics.AddRowsWritten(1, storeName, c.schema.Name())
	}
	return nil
}

// UpsertBatch writes the rows in chunks of MaxRowsPerBatch inside a single
// transaction: either every row lands or none does. An empty slice is a
// no-op.
func (c *Collection) UpsertBatch(ctx context.Context, rows []record.Row) (err error) {
	if len(rows) == 0 {
		return nil
	}

	ctx, done := c.instrument(ctx, "upsert_batch")
	defer func() { done(err) }()

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting batch transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	chunkSize := c.store.cfg.MaxRowsPerBatch
	for offset := 0; offset < len(rows); offset += chunkSize {
		end := offset + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		cmd, buildErr := BuildUpsertBatch(c.schema, rows[offset:end])
		if buildErr != nil {
			err = buildErr
			return err
		}
		if _, err = tx.ExecContext(ctx, cmd.Text, cmd.Args()...); err != nil {
			return fmt.Errorf("upserting batch into %q: %w", c.schema.Name(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}

	if c.store.metrics != nil {
		c.store.metrics.AddRowsWritten(len(rows), storeName, c.schema.Name())
	}
	c.store.logger.Debug("upserted batch", nil, map[string]interface{}{
		"collection": c.schema.Name(),
		"rows":       len(rows),
	})
	return nil
}

// Get fetches the row with the given key. A missing key yields a nil row and
// no error.
func (c *Collection) Get(ctx context.Context, key any, includeVectors bool) (row record.Row, err error) {
	ctx, done := c.instrument(ctx, "get")
	defer func() { done(err) }()

	cmd := BuildGet(c.schema, key, includeVectors)
	rows, err := c.queryRows(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetBatch fetches the rows for the given keys. Missing keys are silently
// absent from the result; row order follows the database, not the key list.
// An empty key list yields an empty result.
func (c *Collection) GetBatch(ctx context.Context, keys []any, includeVectors bool) (rows []record.Row, err error) {
	if len(keys) == 0 {
		return nil, nil
	}

	ctx, done := c.instrument(ctx, "get_batch")
	defer func() { done(err) }()

	cmd, err := BuildGetBatch(c.schema, keys, includeVectors)
	if err != nil {
		return nil, err
	}
	return c.queryRows(ctx, cmd)
}

// Delete removes the row with the given key. Deleting an absent key is a
// no-op.
func (c *Collection) Delete(ctx context.Context, key any) (err error) {
	ctx, done := c.instrument(ctx, "delete")
	defer func() { done(err) }()

	if err = c.exec(ctx, BuildDelete(c.schema, key)); err != nil {
		return fmt.Errorf("deleting from %q: %w", c.schema.Name(), err)
	}
	return nil
}

// DeleteBatch removes the rows for the given keys. An empty key list is a
// no-op.
func (c *Collection) DeleteBatch(ctx context.Context, keys []any) (err error) {
	if len(keys) == 0 {
		return nil
	}

	ctx, done := c.instrument(ctx, "delete_batch")
	defer func() { done(err) }()

	cmd, err := BuildDeleteBatch(c.schema, keys)
	if err != nil {
		return err
	}
	if err = c.exec(ctx, cmd); err != nil {
		return fmt.Errorf("deleting batch from %q: %w", c.schema.Name(), err)
	}
	return nil
}

// Find runs a filtered, ordered scan without vector ranking.
func (c *Collection) Find(ctx context.Context, req FindRequest) (rows []record.Row, err error) {
	ctx, done := c.instrument(ctx, "find")
	defer func() { done(err) }()

	cmd, err := BuildSelect(c.schema, req.Filter, req.Sorts, req.Limit, req.Skip, req.IncludeVectors)
	if err != nil {
		return nil, err
	}
	return c.queryRows(ctx, cmd)
}

// Search runs one or more nearest-neighbor queries and returns the matches
// per request, in request order. Requests run sequentially; SQLite reads on
// one handle do not benefit from fan-out.
func (c *Collection) Search(ctx context.Context, requests ...SearchRequest) (results [][]Match, err error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("at least one search request is required")
	}

	ctx, done := c.instrument(ctx, "search")
	defer func() { done(err) }()

	results = make([][]Match, len(requests))
	for i, req := range requests {
		matches, searchErr := c.search(ctx, req)
		if searchErr != nil {
			err = fmt.Errorf("request [%d]: %w", i, searchErr)
			return nil, err
		}
		results[i] = matches
	}
	return results, nil
}

// search runs a single nearest-neighbor query.
func (c *Collection) search(ctx context.Context, req SearchRequest) ([]Match, error) {
	if req.Limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	vp, ok := c.schema.Vector(req.VectorField)
	if !ok {
		return nil, fmt.Errorf("%w: vector property %q", record.ErrUnresolvedProperty, req.VectorField)
	}
	if len(req.Vector) != vp.Dimensions {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, property %q expects %d",
			record.ErrInvalidModel, len(req.Vector), vp.ColumnName(), vp.Dimensions)
	}

	cmd, err := BuildNearestMatch(c.schema, vp, req.Vector, req)
	if err != nil {
		return nil, err
	}

	rows, err := c.queryRows(ctx, cmd)
	if err != nil {
		return nil, err
	}

	distanceColumn := distanceColumnName(c.schema)
	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		score := asFloat64(row[distanceColumn])
		delete(row, distanceColumn)
		matches = append(matches, Match{Row: row, Score: score})
	}
	return matches, nil
}

// queryRows executes a select-shaped command and decodes the result set.
func (c *Collection) queryRows(ctx context.Context, cmd *record.Command) ([]record.Row, error) {
	rows, err := c.store.db.QueryContext(ctx, cmd.Text, cmd.Args()...)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", c.schema.Name(), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %q: %w", c.schema.Name(), err)
	}

	var out []record.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("reading row from %q: %w", c.schema.Name(), err)
		}

		row := make(record.Row, len(columns))
		for i, name := range columns {
			value, err := c.decodeColumn(name, values[i])
			if err != nil {
				return nil, err
			}
			row[name] = value
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows of %q: %w", c.schema.Name(), err)
	}
	return out, nil
}

// decodeColumn turns a driver value into its host representation. Vector
// columns come back as sqlite-vec blobs and are decoded to []float32;
// everything else passes through as bound by the driver.
func (c *Collection) decodeColumn(column string, value any) (any, error) {
	if _, ok := c.schema.Vector(column); !ok || value == nil {
		return value, nil
	}

	blob, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("vector column %q: unexpected driver type %T", column, value)
	}
	vector, err := DecodeVector(blob)
	if err != nil {
		return nil, fmt.Errorf("vector column %q: %w", column, err)
	}
	return vector, nil
}

func asFloat64(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	default:
		return 0
	}
}
