package record

// ── Filter Constructors ──────────────────────────────────────────────────────

// NewFilter creates a Filter that requires all given conditions to match.
func NewFilter(conditions ...Condition) *Filter {
	return &Filter{Conditions: conditions}
}

// NewEqualTo creates an exact-match condition on a storage column.
func NewEqualTo(field string, value any) *EqualTo {
	return &EqualTo{Field: field, Value: value}
}

// NewAnyTagEqualTo creates a containment condition: the array-typed column
// must contain value.
func NewAnyTagEqualTo(field string, value any) *AnyTagEqualTo {
	return &AnyTagEqualTo{Field: field, Value: value}
}

// NewEqualToAny creates an IN condition: the column value must be one of the
// given values.
func NewEqualToAny(field string, values ...any) *EqualToAny {
	return &EqualToAny{Field: field, Values: values}
}

// IsEmpty reports whether the filter carries no conditions. Translators treat
// nil and empty filters identically (no WHERE clause).
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.Conditions) == 0
}

// ── Sort Constructors ────────────────────────────────────────────────────────

// Ascending creates an ascending sort on a storage column.
func Ascending(field string) Sort {
	return Sort{Field: field}
}

// Descending creates a descending sort on a storage column.
func Descending(field string) Sort {
	return Sort{Field: field, Descending: true}
}
