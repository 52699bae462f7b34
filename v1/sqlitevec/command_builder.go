package sqlitevec

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// The builders in this file are stateless: each one is a pure function from
// (schema, arguments) to a record.Command. All values travel through
// positional ?n placeholders; the only identifiers in the emitted text are
// the schema-controlled table and column names, always quoted.

// quoteIdentifier escapes a table or column name per SQLite quoting rules.
// Names originate from user-chosen collection and property names, so they are
// never emitted bare.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// placeholder renders the n-th positional placeholder.
func placeholder(n int) string {
	return fmt.Sprintf("?%d", n)
}

// placeholderRange renders n placeholders starting at first, comma-joined.
func placeholderRange(first, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = placeholder(first + i)
	}
	return strings.Join(parts, ", ")
}

// BuildCreateTable synthesizes the CREATE TABLE statement for a schema: one
// column per property in declaration order, the key column as PRIMARY KEY,
// vector columns as sqlite-vec float32 blobs.
func BuildCreateTable(s *record.Schema, ifNotExists bool) (*record.Command, error) {
	defs := make([]string, 0, len(s.Properties()))
	for _, p := range s.Properties() {
		switch prop := p.(type) {
		case *record.KeyProperty:
			def, err := columnDefinition(prop.ColumnName(), prop.Type, true)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		case *record.DataProperty:
			def, err := columnDefinition(prop.ColumnName(), prop.Type, false)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		case *record.VectorProperty:
			defs = append(defs, vectorColumnDefinition(prop))
		}
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(quoteIdentifier(s.Name()))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(defs, ", "))
	sb.WriteString(")")

	return &record.Command{Text: sb.String()}, nil
}

// BuildCreateVectorIndex has no realization on this store: sqlite-vec ranks
// with exact distance functions, there is no approximate index structure to
// create. Every index kind fails with ErrUnsupportedIndexKind so callers are
// never left believing an index exists.
func BuildCreateVectorIndex(s *record.Schema, p *record.VectorProperty) (*record.Command, error) {
	return nil, fmt.Errorf("%w: %s on column %q, sqlite-vec searches are exact scans",
		record.ErrUnsupportedIndexKind, p.Index, p.ColumnName())
}

// BuildCreateDataIndex synthesizes a plain index for a data property that was
// declared Indexed.
func BuildCreateDataIndex(s *record.Schema, p *record.DataProperty, ifNotExists bool) *record.Command {
	indexName := s.Name() + "_" + p.ColumnName() + "_idx"
	var sb strings.Builder
	sb.WriteString("CREATE INDEX ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(quoteIdentifier(indexName))
	sb.WriteString(" ON ")
	sb.WriteString(quoteIdentifier(s.Name()))
	sb.WriteString(" (")
	sb.WriteString(quoteIdentifier(p.ColumnName()))
	sb.WriteString(")")
	return &record.Command{Text: sb.String()}
}

// BuildDropTable synthesizes the DROP TABLE statement for a schema.
func BuildDropTable(s *record.Schema) *record.Command {
	return &record.Command{
		Text: "DROP TABLE IF EXISTS " + quoteIdentifier(s.Name()),
	}
}

// BuildTableExists synthesizes the sqlite_master probe that checks whether
// the collection's table exists.
func BuildTableExists(s *record.Schema) *record.Command {
	return &record.Command{
		Text: "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?1",
		Params: []record.Param{
			{Value: s.Name(), Hint: "TEXT"},
		},
	}
}

// upsertColumns resolves the model-order column list an upsert touches from
// the storage names present in the row. Unknown storage names fail with
// ErrUnresolvedProperty; a row that does not carry the key column is
// rejected because ON CONFLICT needs it.
func upsertColumns(s *record.Schema, row record.Row) ([]record.Property, error) {
	for column := range row {
		if !s.HasColumn(column) {
			return nil, fmt.Errorf("%w: row column %q is not part of schema %q",
				record.ErrUnresolvedProperty, column, s.Name())
		}
	}
	if _, ok := row[s.Key().ColumnName()]; !ok {
		return nil, fmt.Errorf("%w: row is missing key column %q",
			record.ErrUnresolvedProperty, s.Key().ColumnName())
	}

	props := make([]record.Property, 0, len(row))
	for _, p := range s.Properties() {
		if _, ok := row[p.ColumnName()]; ok {
			props = append(props, p)
		}
	}
	return props, nil
}

// upsertStatement renders the shared INSERT ... ON CONFLICT skeleton for the
// given column set with valuesClause as the VALUES body.
func upsertStatement(s *record.Schema, props []record.Property, valuesClause string) string {
	keyColumn := s.Key().ColumnName()

	columns := make([]string, len(props))
	updates := make([]string, 0, len(props))
	for i, p := range props {
		quoted := quoteIdentifier(p.ColumnName())
		columns[i] = quoted
		if p.ColumnName() != keyColumn {
			updates = append(updates, quoted+" = excluded."+quoted)
		}
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(quoteIdentifier(s.Name()))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")
	sb.WriteString(valuesClause)
	sb.WriteString(" ON CONFLICT (")
	sb.WriteString(quoteIdentifier(keyColumn))
	sb.WriteString(")")
	if len(updates) == 0 {
		// Key-only schema: nothing to update, keep the upsert idempotent.
		sb.WriteString(" DO NOTHING")
	} else {
		sb.WriteString(" DO UPDATE SET ")
		sb.WriteString(strings.Join(updates, ", "))
	}
	return sb.String()
}

// BuildUpsert synthesizes a single-row upsert: INSERT with one placeholder
// per row column, ON CONFLICT on the key updating every non-key column from
// excluded. Placeholders are numbered ?1..?c in model column order, matching
// the parameter list exactly.
func BuildUpsert(s *record.Schema, row record.Row) (*record.Command, error) {
	props, err := upsertColumns(s, row)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(props))
	params := make([]record.Param, len(props))
	for i, p := range props {
		value, err := parameterValue(p, row[p.ColumnName()])
		if err != nil {
			return nil, err
		}
		placeholders[i] = placeholder(i + 1)
		params[i] = record.Param{Value: value, Hint: paramHint(p)}
	}

	return &record.Command{
		Text:   upsertStatement(s, props, "("+strings.Join(placeholders, ", ")+")"),
		Params: params,
	}, nil
}

// BuildUpsertBatch flattens all rows into one multi-row upsert. The column
// set is taken from the first row; later rows may omit columns (bound as
// NULL) but may not introduce unknown ones. For row r and column c the
// placeholder index is r*columnCount + c + 1, so the parameter list is the
// row-major flattening of the value grid.
func BuildUpsertBatch(s *record.Schema, rows []record.Row) (*record.Command, error) {
	if len(rows) == 0 {
		return nil, record.ErrEmptyBatch
	}
	props, err := upsertColumns(s, rows[0])
	if err != nil {
		return nil, err
	}

	valueRows := make([]string, len(rows))
	params := make([]record.Param, 0, len(rows)*len(props))
	n := 0
	for r, row := range rows {
		for column := range row {
			if !s.HasColumn(column) {
				return nil, fmt.Errorf("%w: row %d column %q is not part of schema %q",
					record.ErrUnresolvedProperty, r, column, s.Name())
			}
		}
		placeholders := make([]string, len(props))
		for i, p := range props {
			value, err := parameterValue(p, row[p.ColumnName()])
			if err != nil {
				return nil, err
			}
			n++
			placeholders[i] = placeholder(n)
			params = append(params, record.Param{Value: value, Hint: paramHint(p)})
		}
		valueRows[r] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	return &record.Command{
		Text:   upsertStatement(s, props, strings.Join(valueRows, ", ")),
		Params: params,
	}, nil
}

// selectColumns renders the quoted projection list for read operations,
// omitting vector columns unless includeVectors is set.
func selectColumns(s *record.Schema, includeVectors bool) string {
	columns := s.Columns(includeVectors)
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

// BuildGet synthesizes the single-key lookup.
func BuildGet(s *record.Schema, key any, includeVectors bool) *record.Command {
	keyProp := s.Key()
	return &record.Command{
		Text: "SELECT " + selectColumns(s, includeVectors) +
			" FROM " + quoteIdentifier(s.Name()) +
			" WHERE " + quoteIdentifier(keyProp.ColumnName()) + " = ?1",
		Params: []record.Param{{Value: key, Hint: paramHint(keyProp)}},
	}
}

// BuildGetBatch synthesizes the multi-key lookup. SQLite has no array
// parameters, so every key binds its own placeholder in an IN list.
func BuildGetBatch(s *record.Schema, keys []any, includeVectors bool) (*record.Command, error) {
	if len(keys) == 0 {
		return nil, record.ErrEmptyBatch
	}
	keyProp := s.Key()
	params := make([]record.Param, len(keys))
	for i, key := range keys {
		params[i] = record.Param{Value: key, Hint: paramHint(keyProp)}
	}
	return &record.Command{
		Text: "SELECT " + selectColumns(s, includeVectors) +
			" FROM " + quoteIdentifier(s.Name()) +
			" WHERE " + quoteIdentifier(keyProp.ColumnName()) + " IN (" + placeholderRange(1, len(keys)) + ")",
		Params: params,
	}, nil
}

// BuildDelete synthesizes the single-key delete.
func BuildDelete(s *record.Schema, key any) *record.Command {
	keyProp := s.Key()
	return &record.Command{
		Text: "DELETE FROM " + quoteIdentifier(s.Name()) +
			" WHERE " + quoteIdentifier(keyProp.ColumnName()) + " = ?1",
		Params: []record.Param{{Value: key, Hint: paramHint(keyProp)}},
	}
}

// BuildDeleteBatch synthesizes the multi-key delete with one placeholder per
// key.
func BuildDeleteBatch(s *record.Schema, keys []any) (*record.Command, error) {
	if len(keys) == 0 {
		return nil, record.ErrEmptyBatch
	}
	keyProp := s.Key()
	params := make([]record.Param, len(keys))
	for i, key := range keys {
		params[i] = record.Param{Value: key, Hint: paramHint(keyProp)}
	}
	return &record.Command{
		Text: "DELETE FROM " + quoteIdentifier(s.Name()) +
			" WHERE " + quoteIdentifier(keyProp.ColumnName()) + " IN (" + placeholderRange(1, len(keys)) + ")",
		Params: params,
	}, nil
}

// BuildSelect synthesizes the predicate-filtered scan: optional WHERE from
// the filter tree, optional ORDER BY from the sort list, LIMIT and OFFSET.
// Filter parameters are numbered from ?1 since no other parameter precedes
// them in this command.
func BuildSelect(s *record.Schema, filter *record.Filter, sorts []record.Sort, limit, skip int, includeVectors bool) (*record.Command, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns(s, includeVectors))
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdentifier(s.Name()))

	var params []record.Param
	if !filter.IsEmpty() {
		fragment, err := translateFilter(s, filter, 1)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(fragment.clause)
		params = fragment.params
	}

	if len(sorts) > 0 {
		orderBy, err := renderOrderBy(s, sorts)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}

	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}
	if skip > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", skip)
	}

	return &record.Command{Text: sb.String(), Params: params}, nil
}
