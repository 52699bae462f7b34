package sqlitevec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// postProcess describes the correction applied to the raw distance value
// after ranking.
type postProcess int

const (
	postProcessNone postProcess = iota
	// postProcessOneMinus projects 1 - distance, turning cosine distance
	// into cosine similarity.
	postProcessOneMinus
)

// distanceSpec is the resolved rendering of a distance function: the
// sqlite-vec distance function to rank with and the post-processing of the
// projected value.
type distanceSpec struct {
	function string
	post     postProcess
}

// resolveDistanceSpec maps a distance function to its sqlite-vec function and
// post-processing. sqlite-vec implements the L2 and cosine metrics; the
// default metric is Euclidean distance. Manhattan distance and dot product
// have no sqlite-vec realization and are rejected.
func resolveDistanceSpec(f record.DistanceFunction) (distanceSpec, error) {
	switch f {
	case record.DistanceDefault, record.EuclideanDistance:
		return distanceSpec{function: "vec_distance_l2"}, nil
	case record.CosineDistance:
		return distanceSpec{function: "vec_distance_cosine"}, nil
	case record.CosineSimilarity:
		return distanceSpec{function: "vec_distance_cosine", post: postProcessOneMinus}, nil
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
//  1. Parameter ?1 is reserved for the query vector blob; filter parameters
//     are numbered from ?2.
//  2. The query projects the requested columns plus
//     `vec_distance_x(<vectorColumn>, ?1) AS <distance>` and orders by the
//     distance alias. sqlite-vec computes the distance exactly per row, so
//     every search is an exact scan regardless of the declared index kind.
//  3. For cosine similarity the ordered query is wrapped in a subquery that
//     projects 1 - distance, leaving ordering and limiting untouched inside.
func BuildNearestMatch(s *record.Schema, vp *record.VectorProperty, vector []float32, req SearchRequest) (*record.Command, error) {
	spec, err := resolveDistanceSpec(vp.Distance)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", vp.ColumnName(), err)
	}

	blob, err := EncodeVector(vector)
	if err != nil {
		return nil, err
	}

	distanceColumn := quoteIdentifier(distanceColumnName(s))
	params := []record.Param{{Value: blob, Hint: "BLOB"}}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns(s, req.IncludeVectors))
	sb.WriteString(", ")
	sb.WriteString(spec.function)
	sb.WriteString("(")
	sb.WriteString(quoteIdentifier(vp.ColumnName()))
	sb.WriteString(", ?1) AS ")
	sb.WriteString(distanceColumn)
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdentifier(s.Name()))

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
	if spec.post == postProcessOneMinus {
		text = fmt.Sprintf("SELECT subquery.*, 1 - subquery.%s AS %s FROM (%s) AS subquery",
			distanceColumn, distanceColumn, text)
	}

	return &record.Command{Text: text, Params: params}, nil
}
