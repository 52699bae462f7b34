package pgvector

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// The builders in this file are stateless: each one is a pure function from
// (schema, arguments) to a record.Command. All values travel through
// positional $n placeholders; the only identifiers in the emitted text are
// the schema-controlled table and column names, always quoted.

// quoteIdentifier escapes a table or column name per Postgres quoting rules.
// Names originate from user-chosen collection and property names, so they are
// never emitted bare.
func quoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

// qualifiedTable renders schema.table with both parts quoted.
func qualifiedTable(dbSchema, table string) string {
	return quoteIdentifier(dbSchema) + "." + quoteIdentifier(table)
}

// placeholder renders the n-th positional placeholder.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// BuildCreateTable synthesizes the CREATE TABLE statement for a schema: one
// column per property in declaration order, the key column as PRIMARY KEY,
// vector columns as pgvector VECTOR(n).
func BuildCreateTable(s *record.Schema, dbSchema string, ifNotExists bool) (*record.Command, error) {
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
	sb.WriteString(qualifiedTable(dbSchema, s.Name()))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(defs, ", "))
	sb.WriteString(")")

	return &record.Command{Text: sb.String()}, nil
}

// indexOperatorClasses maps distance functions to the pgvector operator class
// an index must be built with for that metric.
var indexOperatorClasses = map[record.DistanceFunction]string{
	record.DistanceDefault:   "vector_l2_ops",
	record.CosineDistance:    "vector_cosine_ops",
	record.CosineSimilarity:  "vector_cosine_ops",
	record.DotProduct:        "vector_ip_ops",
	record.EuclideanDistance: "vector_l2_ops",
	record.ManhattanDistance: "vector_l1_ops",
}

// BuildCreateVectorIndex synthesizes the CREATE INDEX statement for one
// vector property. Only the approximate index kinds (hnsw, ivfflat) have a
// SQL realization; requesting an index for IndexFlat fails with
// ErrUnsupportedIndexKind rather than silently creating nothing, so callers
// are never left believing an unindexed column is indexed. The ivfflat +
// manhattan combination is rejected because pgvector does not implement it.
func BuildCreateVectorIndex(s *record.Schema, dbSchema string, p *record.VectorProperty, ifNotExists bool) (*record.Command, error) {
	var method string
	switch p.Index {
	case record.IndexHNSW:
		method = "hnsw"
	case record.IndexIVFFlat:
		method = "ivfflat"
	default:
		return nil, fmt.Errorf("%w: %s on column %q", record.ErrUnsupportedIndexKind, p.Index, p.ColumnName())
	}

	opClass, ok := indexOperatorClasses[p.Distance]
	if !ok {
		return nil, fmt.Errorf("%w: %s on column %q", record.ErrUnsupportedDistanceFunction, p.Distance, p.ColumnName())
	}
	if p.Index == record.IndexIVFFlat && p.Distance == record.ManhattanDistance {
		return nil, fmt.Errorf("%w: ivfflat cannot index the manhattan metric (column %q)",
			record.ErrUnsupportedIndexKind, p.ColumnName())
	}

	indexName := s.Name() + "_" + p.ColumnName() + "_idx"
	var sb strings.Builder
	sb.WriteString("CREATE INDEX ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(quoteIdentifier(indexName))
	sb.WriteString(" ON ")
	sb.WriteString(qualifiedTable(dbSchema, s.Name()))
	sb.WriteString(" USING ")
	sb.WriteString(method)
	sb.WriteString(" (")
	sb.WriteString(quoteIdentifier(p.ColumnName()))
	sb.WriteString(" ")
	sb.WriteString(opClass)
	sb.WriteString(")")

	return &record.Command{Text: sb.String()}, nil
}

// BuildCreateDataIndex synthesizes a plain b-tree index for a data property
// that was declared Indexed.
func BuildCreateDataIndex(s *record.Schema, dbSchema string, p *record.DataProperty, ifNotExists bool) *record.Command {
	indexName := s.Name() + "_" + p.ColumnName() + "_idx"
	var sb strings.Builder
	sb.WriteString("CREATE INDEX ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(quoteIdentifier(indexName))
	sb.WriteString(" ON ")
	sb.WriteString(qualifiedTable(dbSchema, s.Name()))
	sb.WriteString(" (")
	sb.WriteString(quoteIdentifier(p.ColumnName()))
	sb.WriteString(")")
	return &record.Command{Text: sb.String()}
}

// BuildDropTable synthesizes the DROP TABLE statement for a schema. CASCADE
// removes dependent objects such as the vector indexes.
func BuildDropTable(s *record.Schema, dbSchema string) *record.Command {
	return &record.Command{
		Text: "DROP TABLE IF EXISTS " + qualifiedTable(dbSchema, s.Name()) + " CASCADE",
	}
}

// BuildTableExists synthesizes the information_schema probe that checks
// whether the collection's table exists.
func BuildTableExists(s *record.Schema, dbSchema string) *record.Command {
	return &record.Command{
		Text: "SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2",
		Params: []record.Param{
			{Value: dbSchema, Hint: "TEXT"},
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
func upsertStatement(s *record.Schema, dbSchema string, props []record.Property, valuesClause string) string {
	keyColumn := s.Key().ColumnName()

	columns := make([]string, len(props))
	updates := make([]string, 0, len(props))
	for i, p := range props {
		quoted := quoteIdentifier(p.ColumnName())
		columns[i] = quoted
		if p.ColumnName() != keyColumn {
			updates = append(updates, quoted+" = EXCLUDED."+quoted)
		}
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(qualifiedTable(dbSchema, s.Name()))
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
// EXCLUDED. Placeholders are numbered $1..$c in model column order, matching
// the parameter list exactly.
func BuildUpsert(s *record.Schema, dbSchema string, row record.Row) (*record.Command, error) {
	props, err := upsertColumns(s, row)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(props))
	params := make([]record.Param, len(props))
	for i, p := range props {
		placeholders[i] = placeholder(i + 1)
		params[i] = record.Param{Value: parameterValue(p, row[p.ColumnName()]), Hint: paramHint(p)}
	}

	return &record.Command{
		Text:   upsertStatement(s, dbSchema, props, "("+strings.Join(placeholders, ", ")+")"),
		Params: params,
	}, nil
}

// BuildUpsertBatch flattens all rows into one multi-row upsert. The column
// set is taken from the first row; later rows may omit columns (bound as
// NULL) but may not introduce unknown ones. For row r and column c the
// placeholder index is r*columnCount + c + 1, so the parameter list is the
// row-major flattening of the value grid.
func BuildUpsertBatch(s *record.Schema, dbSchema string, rows []record.Row) (*record.Command, error) {
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
			n++
			placeholders[i] = placeholder(n)
			params = append(params, record.Param{Value: parameterValue(p, row[p.ColumnName()]), Hint: paramHint(p)})
		}
		valueRows[r] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	return &record.Command{
		Text:   upsertStatement(s, dbSchema, props, strings.Join(valueRows, ", ")),
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
func BuildGet(s *record.Schema, dbSchema string, key any, includeVectors bool) *record.Command {
	keyProp := s.Key()
	return &record.Command{
		Text: "SELECT " + selectColumns(s, includeVectors) +
			" FROM " + qualifiedTable(dbSchema, s.Name()) +
			" WHERE " + quoteIdentifier(keyProp.ColumnName()) + " = $1",
		Params: []record.Param{{Value: key, Hint: paramHint(keyProp)}},
	}
}

// BuildGetBatch synthesizes the multi-key lookup. The key list is bound as a
// single array-typed parameter (`= ANY($1)`), keeping the emitted text size
// independent of the number of keys.
func BuildGetBatch(s *record.Schema, dbSchema string, keys []any, includeVectors bool) (*record.Command, error) {
	if len(keys) == 0 {
		return nil, record.ErrEmptyBatch
	}
	keyProp := s.Key()
	return &record.Command{
		Text: "SELECT " + selectColumns(s, includeVectors) +
			" FROM " + qualifiedTable(dbSchema, s.Name()) +
			" WHERE " + quoteIdentifier(keyProp.ColumnName()) + " = ANY($1)",
		Params: []record.Param{{Value: keys, Hint: paramHint(keyProp) + "[]"}},
	}, nil
}

// BuildDelete synthesizes the single-key delete.
func BuildDelete(s *record.Schema, dbSchema string, key any) *record.Command {
	keyProp := s.Key()
	return &record.Command{
		Text: "DELETE FROM " + qualifiedTable(dbSchema, s.Name()) +
			" WHERE " + quoteIdentifier(keyProp.ColumnName()) + " = $1",
		Params: []record.Param{{Value: key, Hint: paramHint(keyProp)}},
	}
}

// BuildDeleteBatch synthesizes the multi-key delete with the key list bound
// as one array parameter, like BuildGetBatch.
func BuildDeleteBatch(s *record.Schema, dbSchema string, keys []any) (*record.Command, error) {
	if len(keys) == 0 {
		return nil, record.ErrEmptyBatch
	}
	keyProp := s.Key()
	return &record.Command{
		Text: "DELETE FROM " + qualifiedTable(dbSchema, s.Name()) +
			" WHERE " + quoteIdentifier(keyProp.ColumnName()) + " = ANY($1)",
		Params: []record.Param{{Value: keys, Hint: paramHint(keyProp) + "[]"}},
	}, nil
}

// BuildSelect synthesizes the predicate-filtered scan: optional WHERE from
// the filter tree, optional ORDER BY from the sort list, LIMIT and OFFSET.
// Filter parameters are numbered from $1 since no other parameter precedes
// them in this command.
func BuildSelect(s *record.Schema, dbSchema string, filter *record.Filter, sorts []record.Sort, limit, skip int, includeVectors bool) (*record.Command, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns(s, includeVectors))
	sb.WriteString(" FROM ")
	sb.WriteString(qualifiedTable(dbSchema, s.Name()))

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
