package pgvector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// postProcess describes how a raw distance value must be rewritten before it
// is presented to the caller. The rewrite happens in an outer wrapping query
// so the inner ORDER BY stays a bare operator application the index can use.
type postProcess int

const (
	postProcessNone postProcess = iota
	// postProcessOneMinus projects 1 - distance (cosine similarity).
	postProcessOneMinus
	// postProcessNegate projects -1 * distance (dot-product similarity).
	postProcessNegate
)

// distanceSpec is the SQL realization of a distance function: the pgvector
// operator and the result correction it requires.
type distanceSpec struct {
	operator string
	post     postProcess
}

// resolveDistanceSpec maps a distance function to its operator and
// post-processing, exhaustively over the closed enum. The default metric is
// Euclidean distance.
func resolveDistanceSpec(f record.DistanceFunction) (distanceSpec, error) {
	switch f {
	case record.DistanceDefault, record.EuclideanDistance:
		return distanceSpec{operator: "<->"}, nil
	case record.CosineDistance:
		return distanceSpec{operator: "<=>"}, nil
	case record.CosineSimilarity:
		return distanceSpec{operator: "<=>", post: postProcessOneMinus}, nil
	case record.ManhattanDistance:
		return distanceSpec{operator: "<+>"}, nil
	case record.DotProduct:
		return distanceSpec{operator: "<#>", post: postProcessNegate}, nil
	default:
		return distanceSpec{}, fmt.Errorf("%w: %s", record.ErrUnsupportedDistanceFunction, f)
	}
}

// distanceColumnName picks the alias for the projected distance value. The
// alias must not collide with any storage name of the model, so it is probed
// with deterministic numeric suffixes until free.
func distanceColumnName(s *record.Schema) string {
	name := "distance"
	for i := 1; s.HasColumn(name); i++ {
		name = "distance_" + strconv.Itoa(i)
	}
	return name
}

// BuildNearestMatch synthesizes the nearest-neighbor query for one vector
// property:
//
//  1. Parameter $1 is reserved for the query vector; filter parameters are
//     numbered from $2.
//  2. The inner query projects the requested columns plus
//     `<vectorColumn> <operator> $1 AS <distance>` and orders by the bare
//     distance alias, so pgvector can serve the scan from its index.
//  3. For the similarity metrics the inner query is wrapped in a subquery
//     that projects the corrected score, leaving ordering and limiting
//     untouched inside.
//
// A dimensionality mismatch between the query vector and the property is the
// façade's responsibility to validate; an IndexFlat property simply results
// in an exact scan.
func BuildNearestMatch(s *record.Schema, dbSchema string, vp *record.VectorProperty, vector []float32, req SearchRequest) (*record.Command, error) {
	spec, err := resolveDistanceSpec(vp.Distance)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", vp.ColumnName(), err)
	}

	distanceColumn := quoteIdentifier(distanceColumnName(s))
	params := []record.Param{{
		Value: EncodeVector(vector),
		Hint:  fmt.Sprintf("VECTOR(%d)", vp.Dimensions),
	}}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns(s, req.IncludeVectors))
	sb.WriteString(", ")
	sb.WriteString(quoteIdentifier(vp.ColumnName()))
	sb.WriteString(" ")
	sb.WriteString(spec.operator)
	sb.WriteString(" $1 AS ")
	sb.WriteString(distanceColumn)
	sb.WriteString(" FROM ")
	sb.WriteString(qualifiedTable(dbSchema, s.Name()))

	if !req.Filter.IsEmpty() {
		fragment, err := translateFilter(s, req.Filter, 2)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(fragment.clause)
		params = append(params, fragment.params...)
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(distanceColumn)
	fmt.Fprintf(&sb, " LIMIT %d", req.Limit)
	if req.Skip > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", req.Skip)
	}

	text := sb.String()
	switch spec.post {
	case postProcessOneMinus:
		text = fmt.Sprintf("SELECT subquery.*, 1 - subquery.%s AS %s FROM (%s) AS subquery",
			distanceColumn, distanceColumn, text)
	case postProcessNegate:
		text = fmt.Sprintf("SELECT subquery.*, -1 * subquery.%s AS %s FROM (%s) AS subquery",
			distanceColumn, distanceColumn, text)
	}

	return &record.Command{Text: text, Params: params}, nil
}
