package record

import "errors"

// Sentinel errors shared by all SQL dialect engines. Builders wrap these with
// %w and context (the property, type, or clause at fault), so callers can use
// errors.Is to branch on the category.
var (
	// ErrInvalidModel is returned when a schema cannot be constructed:
	// zero or multiple key properties, duplicate storage names, a
	// non-positive vector dimensionality, or a dimensionality that exceeds
	// the configured index kind's limit.
	ErrInvalidModel = errors.New("invalid schema model")

	// ErrUnsupportedType is returned when a host type has no column type or
	// parameter mapping in the target dialect.
	ErrUnsupportedType = errors.New("unsupported property type")

	// ErrUnsupportedDistanceFunction is returned when the requested distance
	// metric has no SQL realization in the target dialect.
	ErrUnsupportedDistanceFunction = errors.New("unsupported distance function")

	// ErrUnsupportedIndexKind is returned when the requested index strategy
	// has no SQL realization in the target dialect.
	ErrUnsupportedIndexKind = errors.New("unsupported index kind")

	// ErrUnresolvedProperty is returned when a filter or sort clause
	// references a name that is absent from the schema model.
	ErrUnresolvedProperty = errors.New("unresolved property")

	// ErrUnsupportedPredicateShape is returned when a filter clause uses an
	// operator/type combination the translator does not implement.
	ErrUnsupportedPredicateShape = errors.New("unsupported predicate shape")

	// ErrEmptyBatch is returned when a batch builder is invoked with zero
	// rows or keys. Stores treat empty input as a no-op and never surface
	// this error past the engine layer.
	ErrEmptyBatch = errors.New("empty batch")
)
