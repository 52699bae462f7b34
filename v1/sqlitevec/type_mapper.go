package sqlitevec

import (
	"fmt"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// scalarColumnTypes is the closed mapping from host scalar kinds to SQLite
// column types. SQLite affinities are loose, but the declared types keep the
// schema self-describing and steer the right affinity per column.
var scalarColumnTypes = map[record.Kind]string{
	record.KindBool:    "INTEGER",
	record.KindInt16:   "INTEGER",
	record.KindInt32:   "INTEGER",
	record.KindInt64:   "INTEGER",
	record.KindFloat32: "REAL",
	record.KindFloat64: "REAL",
	record.KindDecimal: "NUMERIC",
	record.KindString:  "TEXT",
	record.KindBytes:   "BLOB",
	record.KindUUID:    "TEXT",
	record.KindTime:    "TIMESTAMP",
}

// columnType maps a host type to its SQLite column type. SQLite has no array
// column type, so list-typed properties are unsupported on this store.
func columnType(t record.Type) (string, error) {
	if t.List {
		return "", fmt.Errorf("%w: %s has no sqlite mapping, list types are not supported", record.ErrUnsupportedType, t)
	}
	base, ok := scalarColumnTypes[t.Kind]
	if !ok {
		return "", fmt.Errorf("%w: %s has no sqlite mapping", record.ErrUnsupportedType, t)
	}
	return base, nil
}

// columnDefinition renders one CREATE TABLE column entry for a key or data
// property: quoted name, column type, and NOT NULL unless the host type is
// nullable.
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
// property. Embeddings are stored as sqlite-vec float32 blobs.
func vectorColumnDefinition(p *record.VectorProperty) string {
	return quoteIdentifier(p.ColumnName()) + " BLOB"
}

// paramHint returns the storage type hint attached to a property's bound
// parameters.
func paramHint(p record.Property) string {
	switch prop := p.(type) {
	case *record.KeyProperty:
		hint, _ := columnType(prop.Type)
		return hint
	case *record.DataProperty:
		hint, _ := columnType(prop.Type)
		return hint
	case *record.VectorProperty:
		return "BLOB"
	default:
		return ""
	}
}

// parameterValue converts a host value into the driver-facing form: vectors
// are serialized into sqlite-vec blobs, everything else passes through and is
// bound natively by the driver.
func parameterValue(p record.Property, value any) (any, error) {
	if _, isVector := p.(*record.VectorProperty); isVector {
		if vec, ok := value.([]float32); ok {
			return EncodeVector(vec)
		}
	}
	return value, nil
}
