package sqlitevec

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// whereFragment is the output of the filter translation: a WHERE-clause body
// and the literal parameters it binds, in placeholder order. Placeholder
// numbering starts at the caller-supplied offset and increases monotonically
// in the order parameters are appended, which is what keeps the fragment
// composable into a larger command without renumbering.
type whereFragment struct {
	clause string
	params []record.Param
}

// translator carries the walk state: the schema for property resolution and
// the next placeholder index.
type translator struct {
	schema *record.Schema
	next   int
}

// translateFilter walks the condition tree and renders the conjunction of
// its conditions, numbering parameters from startIndex. A caller that has
// already consumed lower placeholders (the KNN query vector at ?1) passes
// startIndex 2 and composes the fragment directly.
func translateFilter(s *record.Schema, filter *record.Filter, startIndex int) (*whereFragment, error) {
	tr := &translator{schema: s, next: startIndex}

	clauses := make([]string, 0, len(filter.Conditions))
	var params []record.Param
	for _, cond := range filter.Conditions {
		clause, condParams, err := tr.translateCondition(cond)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
		params = append(params, condParams...)
	}

	return &whereFragment{clause: strings.Join(clauses, " AND "), params: params}, nil
}

// resolve maps a filter field to its schema property, failing with
// ErrUnresolvedProperty for names outside the model.
func (tr *translator) resolve(field string) (record.Property, error) {
	p, ok := tr.schema.Property(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not part of schema %q",
			record.ErrUnresolvedProperty, field, tr.schema.Name())
	}
	return p, nil
}

// bind reserves the next placeholder for a literal value and returns its
// rendering.
func (tr *translator) bind(value any, hint string) (string, record.Param) {
	ph := placeholder(tr.next)
	tr.next++
	return ph, record.Param{Value: value, Hint: hint}
}

// translateCondition renders one condition. The translator never drops a
// clause: any shape it does not implement is an error naming the clause.
func (tr *translator) translateCondition(cond record.Condition) (string, []record.Param, error) {
	switch c := cond.(type) {
	case *record.EqualTo:
		p, err := tr.resolve(c.Field)
		if err != nil {
			return "", nil, err
		}
		quoted := quoteIdentifier(c.Field)
		if c.Value == nil {
			// NULL is inlined, never parameterized. SQLite's = never matches
			// NULL, so the null comparison renders as IS NULL.
			return quoted + " IS NULL", nil, nil
		}
		value, err := parameterValue(p, c.Value)
		if err != nil {
			return "", nil, err
		}
		ph, param := tr.bind(value, paramHint(p))
		return quoted + " = " + ph, []record.Param{param}, nil

	case *record.AnyTagEqualTo:
		// Tag containment needs an array-typed column, which this store
		// cannot represent.
		return "", nil, fmt.Errorf("%w: AnyTagEqualTo on %q, sqlite has no array columns",
			record.ErrUnsupportedPredicateShape, c.Field)

	case *record.EqualToAny:
		p, err := tr.resolve(c.Field)
		if err != nil {
			return "", nil, err
		}
		if len(c.Values) == 0 {
			return "", nil, fmt.Errorf("%w: EqualToAny on %q has no values",
				record.ErrUnsupportedPredicateShape, c.Field)
		}
		placeholders := make([]string, len(c.Values))
		params := make([]record.Param, len(c.Values))
		for i, v := range c.Values {
			if v == nil {
				return "", nil, fmt.Errorf("%w: EqualToAny on %q cannot contain null",
					record.ErrUnsupportedPredicateShape, c.Field)
			}
			placeholders[i], params[i] = tr.bind(v, paramHint(p))
		}
		return quoteIdentifier(c.Field) + " IN (" + strings.Join(placeholders, ", ") + ")", params, nil

	default:
		return "", nil, fmt.Errorf("%w: %T", record.ErrUnsupportedPredicateShape, cond)
	}
}

// renderOrderBy validates a sort key list against the schema and renders it
// as "column ASC|DESC" pairs in the requested order. Unresolvable sort keys
// fail the same way unresolvable filter properties do.
func renderOrderBy(s *record.Schema, sorts []record.Sort) (string, error) {
	parts := make([]string, len(sorts))
	for i, sort := range sorts {
		if !s.HasColumn(sort.Field) {
			return "", fmt.Errorf("%w: sort key %q is not part of schema %q",
				record.ErrUnresolvedProperty, sort.Field, s.Name())
		}
		direction := " ASC"
		if sort.Descending {
			direction = " DESC"
		}
		parts[i] = quoteIdentifier(sort.Field) + direction
	}
	return strings.Join(parts, ", "), nil
}
