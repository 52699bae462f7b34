package record

import "fmt"

// Schema is an immutable description of one record type: its collection name,
// its single key property, its data properties and its vector properties, in
// declaration order. A Schema is built once per collection and shared
// read-only between the collection façade and the SQL synthesis engines, so
// it is safe for concurrent use.
type Schema struct {
	name       string
	properties []Property
	byColumn   map[string]Property
	key        *KeyProperty
	vectors    []*VectorProperty
}

// NewSchema validates the property list and builds a Schema for the named
// collection.
//
// Validation rules:
//   - exactly one KeyProperty
//   - every property has a non-empty, unique storage name
//   - every VectorProperty has Dimensions > 0
//   - a VectorProperty's Dimensions must not exceed its index kind's limit
//     (2000 for the graph/clustering indexes)
//
// All violations are reported as errors wrapping ErrInvalidModel; the schema
// is never partially constructed.
//
// Example:
//
//	schema, err := record.NewSchema("hotels",
//	    &record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindInt64}},
//	    &record.DataProperty{Name: "name", Type: record.Type{Kind: record.KindString}},
//	    &record.VectorProperty{Name: "embedding", Dimensions: 1536,
//	        Distance: record.CosineSimilarity, Index: record.IndexHNSW},
//	)
func NewSchema(name string, properties ...Property) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name cannot be empty", ErrInvalidModel)
	}
	if len(properties) == 0 {
		return nil, fmt.Errorf("%w: schema %q has no properties", ErrInvalidModel, name)
	}

	s := &Schema{
		name:       name,
		properties: make([]Property, 0, len(properties)),
		byColumn:   make(map[string]Property, len(properties)),
	}

	for _, p := range properties {
		column := p.ColumnName()
		if column == "" {
			return nil, fmt.Errorf("%w: property without a name in schema %q", ErrInvalidModel, name)
		}
		if _, exists := s.byColumn[column]; exists {
			return nil, fmt.Errorf("%w: duplicate storage name %q in schema %q", ErrInvalidModel, column, name)
		}

		switch prop := p.(type) {
		case *KeyProperty:
			if s.key != nil {
				return nil, fmt.Errorf("%w: schema %q has more than one key property", ErrInvalidModel, name)
			}
			s.key = prop
		case *VectorProperty:
			if prop.Dimensions <= 0 {
				return nil, fmt.Errorf("%w: vector property %q must have a positive dimensionality, got %d",
					ErrInvalidModel, column, prop.Dimensions)
			}
			if limit := prop.Index.MaxDimensions(); limit > 0 && prop.Dimensions > limit {
				return nil, fmt.Errorf("%w: vector property %q has %d dimensions, %s indexes support at most %d",
					ErrInvalidModel, column, prop.Dimensions, prop.Index, limit)
			}
			s.vectors = append(s.vectors, prop)
		case *DataProperty:
			// nothing beyond the shared checks
		default:
			return nil, fmt.Errorf("%w: unknown property shape %T in schema %q", ErrInvalidModel, p, name)
		}

		s.properties = append(s.properties, p)
		s.byColumn[column] = p
	}

	if s.key == nil {
		return nil, fmt.Errorf("%w: schema %q has no key property", ErrInvalidModel, name)
	}

	return s, nil
}

// Name returns the collection name, which is also the table name.
func (s *Schema) Name() string { return s.name }

// Key returns the single key property of the schema.
func (s *Schema) Key() *KeyProperty { return s.key }

// Properties returns the properties in declaration order. The returned slice
// must not be mutated.
func (s *Schema) Properties() []Property { return s.properties }

// Vectors returns the vector properties in declaration order.
func (s *Schema) Vectors() []*VectorProperty { return s.vectors }

// Property resolves a storage name to its property descriptor.
func (s *Schema) Property(column string) (Property, bool) {
	p, ok := s.byColumn[column]
	return p, ok
}

// Vector resolves a storage name to a vector property. When column is empty
// the first declared vector property is returned, matching the "default
// vector" convention of the search operations.
func (s *Schema) Vector(column string) (*VectorProperty, bool) {
	if column == "" {
		if len(s.vectors) == 0 {
			return nil, false
		}
		return s.vectors[0], true
	}
	p, ok := s.byColumn[column]
	if !ok {
		return nil, false
	}
	vp, ok := p.(*VectorProperty)
	return vp, ok
}

// Columns returns the storage names in declaration order. Vector columns are
// omitted unless includeVectors is set, mirroring the projection rule of the
// read operations.
func (s *Schema) Columns(includeVectors bool) []string {
	columns := make([]string, 0, len(s.properties))
	for _, p := range s.properties {
		if _, isVector := p.(*VectorProperty); isVector && !includeVectors {
			continue
		}
		columns = append(columns, p.ColumnName())
	}
	return columns
}

// HasColumn reports whether a storage name is part of the schema.
func (s *Schema) HasColumn(column string) bool {
	_, ok := s.byColumn[column]
	return ok
}
