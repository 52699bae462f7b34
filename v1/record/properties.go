package record

// Property is the interface all schema properties implement.
// Exactly three shapes exist: KeyProperty, DataProperty and VectorProperty.
type Property interface {
	// IsProperty is a marker method to ensure type safety
	IsProperty()

	// SemanticName returns the host-side name of the property.
	SemanticName() string

	// ColumnName returns the storage name of the property: the explicit
	// StorageName if set, the semantic name otherwise.
	ColumnName() string
}

// KeyProperty identifies the single primary-key property of a schema.
type KeyProperty struct {
	Name        string `json:"name"`
	StorageName string `json:"storageName,omitempty"`
	Type        Type   `json:"type"`
}

func (p *KeyProperty) IsProperty() {}

func (p *KeyProperty) SemanticName() string { return p.Name }

func (p *KeyProperty) ColumnName() string {
	if p.StorageName != "" {
		return p.StorageName
	}
	return p.Name
}

// DataProperty is a scalar (or list-of-scalar) payload property.
// Indexed requests a plain b-tree index on the column at table creation.
type DataProperty struct {
	Name        string `json:"name"`
	StorageName string `json:"storageName,omitempty"`
	Type        Type   `json:"type"`
	Indexed     bool   `json:"indexed,omitempty"`
}

func (p *DataProperty) IsProperty() {}

func (p *DataProperty) SemanticName() string { return p.Name }

func (p *DataProperty) ColumnName() string {
	if p.StorageName != "" {
		return p.StorageName
	}
	return p.Name
}

// VectorProperty is an embedding property with a fixed dimensionality,
// a distance metric and an index strategy. Host representation is []float32.
type VectorProperty struct {
	Name        string           `json:"name"`
	StorageName string           `json:"storageName,omitempty"`
	Dimensions  int              `json:"dimensions"`
	Distance    DistanceFunction `json:"distance,omitempty"`
	Index       IndexKind        `json:"index,omitempty"`
}

func (p *VectorProperty) IsProperty() {}

func (p *VectorProperty) SemanticName() string { return p.Name }

func (p *VectorProperty) ColumnName() string {
	if p.StorageName != "" {
		return p.StorageName
	}
	return p.Name
}
