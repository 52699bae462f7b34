package pgvector

import (
	"fmt"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// scalarColumnTypes is the closed mapping from host scalar kinds to Postgres
// column types. Every supported kind maps to exactly one column type; the
// mapping is exhaustive over record.Kind so a new kind is a compile-visible
// gap here rather than a runtime surprise.
var scalarColumnTypes = map[record.Kind]string{
	record.KindBool:    "BOOLEAN",
	record.KindInt16:   "SMALLINT",
	record.KindInt32:   "INTEGER",
	record.KindInt64:   "BIGINT",
	record.KindFloat32: "REAL",
	record.KindFloat64: "DOUBLE PRECISION",
	record.KindDecimal: "NUMERIC",
	record.KindString:  "TEXT",
	record.KindBytes:   "BYTEA",
	record.KindUUID:    "UUID",
	record.KindTime:    "TIMESTAMPTZ",
}

// columnType maps a host type to its Postgres column type. List types map to
// the element type's array form; nullability is rendered as the absence of a
// NOT NULL constraint by columnDefinition, not here.
func columnType(t record.Type) (string, error) {
	base, ok := scalarColumnTypes[t.Kind]
	if !ok {
		return "", fmt.Errorf("%w: %s has no postgres mapping", record.ErrUnsupportedType, t)
	}
	if t.List {
		return base + "[]", nil
	}
	return base, nil
}

// columnDefinition renders one CREATE TABLE column entry for a key or data
// property: quoted name, column type, and NOT NULL unless the host type is
// nullable. Key columns additionally carry PRIMARY KEY at the call site.
func columnDefinition(name string, t record.Type, isKey bool) (string, error) {
	colType, err := columnType(t)
	if err != nil {
		return "", fmt.Errorf("property %q: %w", name, err)
	}
	def := quoteIdentifier(name) + " " + colType
	if isKey {
		return def + " PRIMARY KEY", nil
	}
	if !t.Nullable {
		def += " NOT NULL"
	}
	return def, nil
}

// vectorColumnDefinition renders one CREATE TABLE column entry for a vector
// property using pgvector's VECTOR(n) type. Dimensionality was validated at
// schema construction, so it is emitted as part of the type expression.
func vectorColumnDefinition(p *record.VectorProperty) string {
	return fmt.Sprintf("%s VECTOR(%d)", quoteIdentifier(p.ColumnName()), p.Dimensions)
}

// paramHint returns the storage type hint attached to a property's bound
// parameters so drivers that cannot infer types still bind correctly.
func paramHint(p record.Property) string {
	switch prop := p.(type) {
	case *record.KeyProperty:
		hint, _ := columnType(prop.Type)
		return hint
	case *record.DataProperty:
		hint, _ := columnType(prop.Type)
		return hint
	case *record.VectorProperty:
		return fmt.Sprintf("VECTOR(%d)", prop.Dimensions)
	default:
		return ""
	}
}

// parameterValue converts a host value into the driver-facing form: vectors
// are rewritten into the pgvector text literal, everything else passes
// through and is bound natively by pgx.
func parameterValue(p record.Property, value any) any {
	if _, isVector := p.(*record.VectorProperty); isVector {
		if vec, ok := value.([]float32); ok {
			return EncodeVector(vec)
		}
	}
	return value
}
