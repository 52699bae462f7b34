package sqlitevec

import (
	"errors"
	"testing"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

func TestTranslateFilter_StartIndexThreading(t *testing.T) {
	s := testSchema(t)
	filter := record.NewFilter(
		record.NewEqualTo("name", "Grand"),
		record.NewEqualTo("id", int64(9)),
	)

	fragment, err := translateFilter(s, filter, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `"name" = ?2 AND "id" = ?3`
	if fragment.clause != want {
		t.Errorf("clause mismatch:\n got  %q\n want %q", fragment.clause, want)
	}
	if len(fragment.params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fragment.params))
	}
	if fragment.params[0].Value != "Grand" || fragment.params[1].Value != int64(9) {
		t.Errorf("param order does not follow placeholder order: %v", fragment.params)
	}
}

func TestTranslateFilter_NullEquality(t *testing.T) {
	s := testSchema(t)
	fragment, err := translateFilter(s, record.NewFilter(record.NewEqualTo("name", nil)), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fragment.clause != `"name" IS NULL` {
		t.Errorf("null comparison must be inlined as IS NULL, got %q", fragment.clause)
	}
	if len(fragment.params) != 0 {
		t.Errorf("null comparison must not bind parameters, got %v", fragment.params)
	}
}

func TestTranslateFilter_AnyTagEqualToRejected(t *testing.T) {
	s := testSchema(t)
	filter := record.NewFilter(&record.AnyTagEqualTo{Field: "name", Value: "spa"})

	_, err := translateFilter(s, filter, 1)
	if !errors.Is(err, record.ErrUnsupportedPredicateShape) {
		t.Fatalf("expected ErrUnsupportedPredicateShape, got %v", err)
	}
}

func TestTranslateFilter_EqualToAny(t *testing.T) {
	s := testSchema(t)
	filter := record.NewFilter(record.NewEqualToAny("id", int64(1), int64(2), int64(3)))

	fragment, err := translateFilter(s, filter, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `"id" IN (?4, ?5, ?6)`
	if fragment.clause != want {
		t.Errorf("clause mismatch:\n got  %q\n want %q", fragment.clause, want)
	}
	if len(fragment.params) != 3 {
		t.Errorf("expected one param per value, got %d", len(fragment.params))
	}
}

func TestTranslateFilter_EqualToAnyEmpty(t *testing.T) {
	s := testSchema(t)
	_, err := translateFilter(s, record.NewFilter(&record.EqualToAny{Field: "id"}), 1)
	if !errors.Is(err, record.ErrUnsupportedPredicateShape) {
		t.Fatalf("expected ErrUnsupportedPredicateShape for empty value list, got %v", err)
	}
}

func TestTranslateFilter_UnknownProperty(t *testing.T) {
	s := testSchema(t)
	_, err := translateFilter(s, record.NewFilter(record.NewEqualTo("bogus", 1)), 1)
	if !errors.Is(err, record.ErrUnresolvedProperty) {
		t.Fatalf("expected ErrUnresolvedProperty, got %v", err)
	}
}

func TestRenderOrderBy(t *testing.T) {
	s := testSchema(t)
	orderBy, err := renderOrderBy(s, []record.Sort{record.Ascending("name"), record.Descending("id")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orderBy != `"name" ASC, "id" DESC` {
		t.Errorf("order by mismatch: %q", orderBy)
	}
}

func TestRenderOrderBy_UnknownKey(t *testing.T) {
	s := testSchema(t)
	_, err := renderOrderBy(s, []record.Sort{record.Ascending("bogus")})
	if !errors.Is(err, record.ErrUnresolvedProperty) {
		t.Fatalf("expected ErrUnresolvedProperty, got %v", err)
	}
}
