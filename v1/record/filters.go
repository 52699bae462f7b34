package record

// Condition is the interface all filter conditions must implement.
// Each dialect engine translates these into its native WHERE fragment.
type Condition interface {
	// IsCondition is a marker method to ensure type safety
	IsCondition()
}

// Filter is a conjunction of conditions: every condition must hold for a row
// to match. It is the closed predicate tree the façade lowers host-language
// predicates into; the engines never see host expression representations.
//
// Example:
//
//	filter := record.NewFilter(
//	    record.NewEqualTo("name", "x"),
//	    record.NewEqualToAny("age", 10, 20, 30),
//	)
type Filter struct {
	Conditions []Condition `json:"conditions,omitempty"`
}

// EqualTo represents an exact match (WHERE field = value).
// A nil Value compares against the SQL NULL literal, which the translators
// inline rather than parameterize; note that `field = NULL` matches no rows
// under SQL three-valued logic, so null-valued equality is a recognized edge
// case of the legacy surface, not a general IS NULL predicate.
type EqualTo struct {
	Field string `json:"field"`
	Value any    `json:"equalTo"`
}

func (c *EqualTo) IsCondition() {}

// AnyTagEqualTo matches when an array-typed column contains the given value
// (containment operator, e.g. WHERE field @> ARRAY[value]).
type AnyTagEqualTo struct {
	Field string `json:"field"`
	Value any    `json:"contains"`
}

func (c *AnyTagEqualTo) IsCondition() {}

// EqualToAny is the reversed form: the column value must be one of the
// captured values (WHERE field = ANY(values), an IN over a bound list).
type EqualToAny struct {
	Field  string `json:"field"`
	Values []any  `json:"anyOf"`
}

func (c *EqualToAny) IsCondition() {}
