package pgvector

import (
	"errors"
	"testing"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

func filterSchema(t *testing.T) *record.Schema {
	t.Helper()
	s, err := record.NewSchema("people",
		&record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindInt64}},
		&record.DataProperty{Name: "name", Type: record.Type{Kind: record.KindString}},
		&record.DataProperty{Name: "age", Type: record.Type{Kind: record.KindInt32}},
		&record.DataProperty{Name: "tags", Type: record.ListOf(record.Type{Kind: record.KindString})},
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func TestTranslateFilter_EqualAndAnyOf(t *testing.T) {
	// name = "x" AND age IN (10, 20, 30), composed after a reserved $1.
	filter := record.NewFilter(
		record.NewEqualTo("name", "x"),
		record.NewEqualToAny("age", 10, 20, 30),
	)
	fragment, err := translateFilter(filterSchema(t), filter, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `"name" = $2 AND "age" = ANY($3)`
	if fragment.clause != want {
		t.Errorf("expected %q, got %q", want, fragment.clause)
	}
	if len(fragment.params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fragment.params))
	}
	if fragment.params[0].Value != "x" {
		t.Errorf("first param should be the name literal, got %v", fragment.params[0].Value)
	}
	values, ok := fragment.params[1].Value.([]any)
	if !ok || len(values) != 3 {
		t.Errorf("IN list should bind as one array param, got %v", fragment.params[1].Value)
	}
}

func TestTranslateFilter_StartIndexThreading(t *testing.T) {
	filter := record.NewFilter(
		record.NewEqualTo("name", "a"),
		record.NewEqualTo("age", 3),
		record.NewEqualTo("id", int64(9)),
	)
	fragment, err := translateFilter(filterSchema(t), filter, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `"name" = $5 AND "age" = $6 AND "id" = $7`
	if fragment.clause != want {
		t.Errorf("expected %q, got %q", want, fragment.clause)
	}
	if len(fragment.params) != 3 {
		t.Errorf("expected one param per non-null literal, got %d", len(fragment.params))
	}
}

func TestTranslateFilter_NullLiteralInlined(t *testing.T) {
	filter := record.NewFilter(record.NewEqualTo("name", nil))
	fragment, err := translateFilter(filterSchema(t), filter, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fragment.clause != `"name" = NULL` {
		t.Errorf("null literal must be inlined, got %q", fragment.clause)
	}
	if len(fragment.params) != 0 {
		t.Errorf("null literal must not be parameterized, got %v", fragment.params)
	}
}

func TestTranslateFilter_Containment(t *testing.T) {
	filter := record.NewFilter(record.NewAnyTagEqualTo("tags", "go"))
	fragment, err := translateFilter(filterSchema(t), filter, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fragment.clause != `"tags" @> $1` {
		t.Errorf("expected containment operator, got %q", fragment.clause)
	}
	values, ok := fragment.params[0].Value.([]any)
	if !ok || len(values) != 1 || values[0] != "go" {
		t.Errorf("containment param must be a single-element array, got %v", fragment.params[0].Value)
	}
}

func TestTranslateFilter_ContainmentOnScalarRejected(t *testing.T) {
	filter := record.NewFilter(record.NewAnyTagEqualTo("name", "go"))
	_, err := translateFilter(filterSchema(t), filter, 1)
	if !errors.Is(err, record.ErrUnsupportedPredicateShape) {
		t.Errorf("expected ErrUnsupportedPredicateShape, got %v", err)
	}
}

func TestTranslateFilter_UnknownProperty(t *testing.T) {
	filter := record.NewFilter(record.NewEqualTo("bogus", 1))
	_, err := translateFilter(filterSchema(t), filter, 1)
	if !errors.Is(err, record.ErrUnresolvedProperty) {
		t.Errorf("expected ErrUnresolvedProperty, got %v", err)
	}
}

func TestTranslateFilter_EmptyAnyOfRejected(t *testing.T) {
	filter := record.NewFilter(record.NewEqualToAny("age"))
	_, err := translateFilter(filterSchema(t), filter, 1)
	if !errors.Is(err, record.ErrUnsupportedPredicateShape) {
		t.Errorf("expected ErrUnsupportedPredicateShape, got %v", err)
	}
}

func TestTranslateFilter_NullInAnyOfRejected(t *testing.T) {
	filter := record.NewFilter(record.NewEqualToAny("age", 1, nil))
	_, err := translateFilter(filterSchema(t), filter, 1)
	if !errors.Is(err, record.ErrUnsupportedPredicateShape) {
		t.Errorf("expected ErrUnsupportedPredicateShape, got %v", err)
	}
}

func TestRenderOrderBy(t *testing.T) {
	s := filterSchema(t)
	orderBy, err := renderOrderBy(s, []record.Sort{
		record.Ascending("name"),
		record.Descending("age"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orderBy != `"name" ASC, "age" DESC` {
		t.Errorf("wrong order by rendering: %q", orderBy)
	}
}
