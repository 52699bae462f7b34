package record

// Kind enumerates the scalar host types a property can carry.
// Each dialect engine maps every Kind to exactly one column type,
// or fails with ErrUnsupportedType if the dialect has no mapping.
type Kind int

const (
	KindBool Kind = iota
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindBytes
	KindUUID
	KindTime
)

// String returns the host-side name of the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindUUID:
		return "uuid"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Type describes the host type of a key or data property.
// List marks a sequence of the scalar kind; Nullable marks that the
// host value may be absent, which propagates into the column definition.
type Type struct {
	Kind     Kind `json:"kind"`
	List     bool `json:"list,omitempty"`
	Nullable bool `json:"nullable,omitempty"`
}

// String renders the type the way it appears in error messages, e.g.
// "[]string" or "int64?".
func (t Type) String() string {
	s := t.Kind.String()
	if t.List {
		s = "[]" + s
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// ListOf returns the sequence form of t. Nullability of the element type is
// preserved on the list as a whole.
func ListOf(t Type) Type {
	t.List = true
	return t
}

// NullableOf returns the nullable form of t.
func NullableOf(t Type) Type {
	t.Nullable = true
	return t
}

// DistanceFunction is the metric used to compare vectors. The zero value
// DistanceDefault lets the dialect engine choose (Euclidean distance).
type DistanceFunction int

const (
	DistanceDefault DistanceFunction = iota
	CosineDistance
	CosineSimilarity
	EuclideanDistance
	ManhattanDistance
	DotProduct
)

// String returns the metric name used in configuration and error messages.
func (d DistanceFunction) String() string {
	switch d {
	case DistanceDefault:
		return "default"
	case CosineDistance:
		return "cosine_distance"
	case CosineSimilarity:
		return "cosine_similarity"
	case EuclideanDistance:
		return "euclidean"
	case ManhattanDistance:
		return "manhattan"
	case DotProduct:
		return "dot_product"
	default:
		return "unknown"
	}
}

// IndexKind is the storage engine's strategy for accelerating vector search.
type IndexKind int

const (
	// IndexFlat means no dedicated vector index: searches run as exact
	// scans. Degraded but correct, never an error at search time.
	IndexFlat IndexKind = iota
	// IndexHNSW is pgvector's graph-based approximate index.
	IndexHNSW
	// IndexIVFFlat is pgvector's clustering-based approximate index.
	IndexIVFFlat
)

// maxVectorDimensions is the pgvector index limit: vectors with more than
// 2000 dimensions cannot be indexed by hnsw or ivfflat.
const maxVectorDimensions = 2000

// String returns the index kind name used in configuration and error messages.
func (k IndexKind) String() string {
	switch k {
	case IndexFlat:
		return "flat"
	case IndexHNSW:
		return "hnsw"
	case IndexIVFFlat:
		return "ivfflat"
	default:
		return "unknown"
	}
}

// MaxDimensions returns the largest vector dimensionality the index kind can
// handle, or 0 if the kind imposes no limit.
func (k IndexKind) MaxDimensions() int {
	switch k {
	case IndexHNSW, IndexIVFFlat:
		return maxVectorDimensions
	default:
		return 0
	}
}

// Row is one record keyed by storage name. Vector property values are
// []float32; scalar values use the Go type matching the property's Kind.
type Row map[string]any

// Sort is one ORDER BY entry for filtered scans, referencing a property by
// its storage name.
type Sort struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

// Param is one positional parameter of a synthesized command. Hint carries
// the column type the value binds to; drivers that infer types may ignore it.
type Param struct {
	Value any
	Hint  string
}

// Command is the contract between the synthesis engines and the driver layer:
// SQL text containing only positional placeholders, plus the parameter list
// ordered 1:1 with those placeholders. Commands are transient; they are built
// per call and never retained.
type Command struct {
	Text   string
	Params []Param
}

// Args flattens the parameter values in placeholder order, ready to hand to
// a database driver's Exec or Query call.
func (c *Command) Args() []any {
	if len(c.Params) == 0 {
		return nil
	}
	args := make([]any, len(c.Params))
	for i, p := range c.Params {
		args[i] = p.Value
	}
	return args
}
