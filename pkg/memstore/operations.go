package memstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/lib/pq"

	"github.com/Aleph-Alpha/recordstore/v1/pgvector"
	"github.com/Aleph-Alpha/recordstore/v1/record"
)

//
// ──────────────────────────────────────────────────────────────
//   MEMORY RECORD OPERATIONS
// ──────────────────────────────────────────────────────────────
//
// The legacy surface: collections of MemoryRecord entries, addressed by
// collection name. Every operation materializes the fixed memory schema for
// the collection, synthesizes the statement through the pgvector command
// builders and executes it on the gorm handle.
//

// positionalPlaceholders matches the $n placeholders the command builders
// emit. gorm binds values to ? markers and renders the dialect placeholders
// itself, so the synthesized text is rewritten before execution. Builder
// placeholders are strictly sequential, which keeps the rewrite a plain
// in-order substitution.
var positionalPlaceholders = regexp.MustCompile(`\$\d+`)

func rebind(text string) string {
	return positionalPlaceholders.ReplaceAllString(text, "?")
}

// bindArgs prepares command parameters for the gorm handle. gorm expands a
// slice argument that follows an opening parenthesis into comma-joined
// placeholders, which corrupts the batch key predicate ("id" = ANY($1)):
// ANY takes exactly one array expression. Slice values are wrapped in
// pq.Array so they travel to the driver as a single array value.
func bindArgs(cmd *record.Command) []any {
	args := cmd.Args()
	for i, arg := range args {
		switch arg.(type) {
		case []any, []string:
			args[i] = pq.Array(arg)
		}
	}
	return args
}

func (m *MemoryStore) schema(collection string) (*record.Schema, error) {
	return memorySchema(collection, m.cfg.Dimensions)
}

func (m *MemoryStore) exec(ctx context.Context, cmd *record.Command) error {
	return TranslateError(m.db(ctx).Exec(rebind(cmd.Text), bindArgs(cmd)...).Error)
}

// queryRows executes a select-shaped command and decodes the result set,
// turning vector columns back into []float32.
func (m *MemoryStore) queryRows(ctx context.Context, s *record.Schema, cmd *record.Command) ([]record.Row, error) {
	rows, err := m.db(ctx).Raw(rebind(cmd.Text), bindArgs(cmd)...).Rows()
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", s.Name(), TranslateError(err))
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %q: %w", s.Name(), err)
	}

	var out []record.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("reading row from %q: %w", s.Name(), err)
		}

		row := make(record.Row, len(columns))
		for i, name := range columns {
			value, err := decodeColumn(s, name, values[i])
			if err != nil {
				return nil, err
			}
			row[name] = value
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows of %q: %w", s.Name(), err)
	}
	return out, nil
}

// decodeColumn turns a driver value into its host representation. Vector
// columns come back in pgvector's text format and are decoded to []float32.
func decodeColumn(s *record.Schema, column string, value any) (any, error) {
	if _, ok := s.Vector(column); !ok || value == nil {
		return value, nil
	}

	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return nil, fmt.Errorf("vector column %q: unexpected driver type %T", column, value)
	}

	vector, err := pgvector.DecodeVector(text)
	if err != nil {
		return nil, fmt.Errorf("vector column %q: %w", column, err)
	}
	return vector, nil
}

// CreateCollection creates the table backing a collection. Creating an
// existing collection is a no-op.
func (m *MemoryStore) CreateCollection(ctx context.Context, collection string) error {
	s, err := m.schema(collection)
	if err != nil {
		return err
	}

	cmd, err := pgvector.BuildCreateTable(s, m.cfg.DBSchema, true)
	if err != nil {
		return err
	}
	if err := m.exec(ctx, cmd); err != nil {
		return fmt.Errorf("creating collection %q: %w", collection, err)
	}

	m.logger.Debug("created memory collection", nil, map[string]interface{}{
		"collection": collection,
	})
	return nil
}

// DoesCollectionExist reports whether the collection's table is present.
func (m *MemoryStore) DoesCollectionExist(ctx context.Context, collection string) (bool, error) {
	s, err := m.schema(collection)
	if err != nil {
		return false, err
	}

	rows, err := m.queryRows(ctx, s, pgvector.BuildTableExists(s, m.cfg.DBSchema))
	if err != nil {
		return false, fmt.Errorf("probing collection %q: %w", collection, err)
	}
	return len(rows) > 0, nil
}

// DeleteCollection drops the collection's table. Deleting an absent
// collection is a no-op.
func (m *MemoryStore) DeleteCollection(ctx context.Context, collection string) error {
	s, err := m.schema(collection)
	if err != nil {
		return err
	}

	if err := m.exec(ctx, pgvector.BuildDropTable(s, m.cfg.DBSchema)); err != nil {
		return fmt.Errorf("deleting collection %q: %w", collection, err)
	}
	return nil
}

// Upsert writes one memory record and returns its key.
func (m *MemoryStore) Upsert(ctx context.Context, collection string, rec MemoryRecord) (string, error) {
	s, err := m.schema(collection)
	if err != nil {
		return "", err
	}

	cmd, err := pgvector.BuildUpsert(s, m.cfg.DBSchema, recordToRow(rec))
	if err != nil {
		return "", err
	}
	if err := m.exec(ctx, cmd); err != nil {
		return "", fmt.Errorf("upserting into %q: %w", collection, err)
	}
	return rec.ID, nil
}

// UpsertBatch writes the records in one statement and returns their keys in
// input order. An empty batch is a no-op.
func (m *MemoryStore) UpsertBatch(ctx context.Context, collection string, records []MemoryRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	s, err := m.schema(collection)
	if err != nil {
		return nil, err
	}

	rows := make([]record.Row, len(records))
	keys := make([]string, len(records))
	for i, rec := range records {
		rows[i] = recordToRow(rec)
		keys[i] = rec.ID
	}

	cmd, err := pgvector.BuildUpsertBatch(s, m.cfg.DBSchema, rows)
	if err != nil {
		return nil, err
	}
	if err := m.exec(ctx, cmd); err != nil {
		return nil, fmt.Errorf("upserting batch into %q: %w", collection, err)
	}
	return keys, nil
}

// Get fetches the record with the given key. A missing key yields
// ErrRecordNotFound.
func (m *MemoryStore) Get(ctx context.Context, collection, key string, withEmbedding bool) (MemoryRecord, error) {
	s, err := m.schema(collection)
	if err != nil {
		return MemoryRecord{}, err
	}

	rows, err := m.queryRows(ctx, s, pgvector.BuildGet(s, m.cfg.DBSchema, key, withEmbedding))
	if err != nil {
		return MemoryRecord{}, err
	}
	if len(rows) == 0 {
		return MemoryRecord{}, fmt.Errorf("key %q in collection %q: %w", key, collection, ErrRecordNotFound)
	}
	return rowToRecord(rows[0]), nil
}

// GetBatch fetches the records for the given keys. Missing keys are silently
// absent from the result; an empty key list yields an empty result.
func (m *MemoryStore) GetBatch(ctx context.Context, collection string, keys []string, withEmbeddings bool) ([]MemoryRecord, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	s, err := m.schema(collection)
	if err != nil {
		return nil, err
	}

	cmd, err := pgvector.BuildGetBatch(s, m.cfg.DBSchema, anyKeys(keys), withEmbeddings)
	if err != nil {
		return nil, err
	}
	rows, err := m.queryRows(ctx, s, cmd)
	if err != nil {
		return nil, err
	}

	records := make([]MemoryRecord, len(rows))
	for i, row := range rows {
		records[i] = rowToRecord(row)
	}
	return records, nil
}

// Remove deletes the record with the given key. Removing an absent key is a
// no-op.
func (m *MemoryStore) Remove(ctx context.Context, collection, key string) error {
	s, err := m.schema(collection)
	if err != nil {
		return err
	}

	if err := m.exec(ctx, pgvector.BuildDelete(s, m.cfg.DBSchema, key)); err != nil {
		return fmt.Errorf("removing from %q: %w", collection, err)
	}
	return nil
}

// RemoveBatch deletes the records for the given keys. An empty key list is a
// no-op.
func (m *MemoryStore) RemoveBatch(ctx context.Context, collection string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	s, err := m.schema(collection)
	if err != nil {
		return err
	}

	cmd, err := pgvector.BuildDeleteBatch(s, m.cfg.DBSchema, anyKeys(keys))
	if err != nil {
		return err
	}
	if err := m.exec(ctx, cmd); err != nil {
		return fmt.Errorf("removing batch from %q: %w", collection, err)
	}
	return nil
}

// GetNearestMatches returns up to limit records ranked by cosine similarity
// to the query embedding, dropping matches below minRelevanceScore. The
// embedding length must match the configured dimensionality.
func (m *MemoryStore) GetNearestMatches(ctx context.Context, collection string, embedding []float32, limit int, minRelevanceScore float64, withEmbeddings bool) ([]MemoryMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	s, err := m.schema(collection)
	if err != nil {
		return nil, err
	}

	vp := s.Vectors()[0]
	if len(embedding) != vp.Dimensions {
		return nil, fmt.Errorf("%w: query embedding has %d dimensions, store is configured for %d",
			record.ErrInvalidModel, len(embedding), vp.Dimensions)
	}

	cmd, err := pgvector.BuildNearestMatch(s, m.cfg.DBSchema, vp, embedding, pgvector.SearchRequest{
		Vector:         embedding,
		Limit:          limit,
		IncludeVectors: withEmbeddings,
	})
	if err != nil {
		return nil, err
	}

	rows, err := m.queryRows(ctx, s, cmd)
	if err != nil {
		return nil, err
	}

	matches := make([]MemoryMatch, 0, len(rows))
	for _, row := range rows {
		relevance := asFloat64(row["distance"])
		if relevance < minRelevanceScore {
			continue
		}
		delete(row, "distance")
		matches = append(matches, MemoryMatch{Record: rowToRecord(row), Relevance: relevance})
	}
	return matches, nil
}

// GetNearestMatch returns the single best match above minRelevanceScore, or
// ErrRecordNotFound when nothing qualifies.
func (m *MemoryStore) GetNearestMatch(ctx context.Context, collection string, embedding []float32, minRelevanceScore float64, withEmbedding bool) (MemoryMatch, error) {
	matches, err := m.GetNearestMatches(ctx, collection, embedding, 1, minRelevanceScore, withEmbedding)
	if err != nil {
		return MemoryMatch{}, err
	}
	if len(matches) == 0 {
		return MemoryMatch{}, fmt.Errorf("no match above relevance %v in collection %q: %w",
			minRelevanceScore, collection, ErrRecordNotFound)
	}
	return matches[0], nil
}

func anyKeys(keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
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
