package record

import (
	"errors"
	"testing"
)

func testProperties() []Property {
	return []Property{
		&KeyProperty{Name: "id", Type: Type{Kind: KindInt64}},
		&DataProperty{Name: "name", Type: Type{Kind: KindString}},
		&VectorProperty{Name: "emb", Dimensions: 4},
	}
}

func TestNewSchema_Valid(t *testing.T) {
	s, err := NewSchema("hotels", testProperties()...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "hotels" {
		t.Errorf("expected name hotels, got %q", s.Name())
	}
	if s.Key() == nil || s.Key().ColumnName() != "id" {
		t.Errorf("expected key column id, got %v", s.Key())
	}
	if len(s.Vectors()) != 1 {
		t.Errorf("expected 1 vector property, got %d", len(s.Vectors()))
	}
}

func TestNewSchema_NoKey(t *testing.T) {
	_, err := NewSchema("hotels",
		&DataProperty{Name: "name", Type: Type{Kind: KindString}},
	)
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got %v", err)
	}
}

func TestNewSchema_TwoKeys(t *testing.T) {
	_, err := NewSchema("hotels",
		&KeyProperty{Name: "id", Type: Type{Kind: KindInt64}},
		&KeyProperty{Name: "id2", Type: Type{Kind: KindInt64}},
	)
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got %v", err)
	}
}

func TestNewSchema_DuplicateStorageName(t *testing.T) {
	_, err := NewSchema("hotels",
		&KeyProperty{Name: "id", Type: Type{Kind: KindInt64}},
		&DataProperty{Name: "name", Type: Type{Kind: KindString}},
		&DataProperty{Name: "other", StorageName: "name", Type: Type{Kind: KindString}},
	)
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got %v", err)
	}
}

func TestNewSchema_NonPositiveDimensions(t *testing.T) {
	_, err := NewSchema("hotels",
		&KeyProperty{Name: "id", Type: Type{Kind: KindInt64}},
		&VectorProperty{Name: "emb", Dimensions: 0},
	)
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got %v", err)
	}
}

func TestNewSchema_DimensionsExceedIndexLimit(t *testing.T) {
	_, err := NewSchema("hotels",
		&KeyProperty{Name: "id", Type: Type{Kind: KindInt64}},
		&VectorProperty{Name: "emb", Dimensions: 3000, Index: IndexHNSW},
	)
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel for 3000 dims on hnsw, got %v", err)
	}
}

func TestNewSchema_LargeVectorWithoutIndexAllowed(t *testing.T) {
	// Flat has no dimensionality limit; only the approximate indexes cap out.
	_, err := NewSchema("hotels",
		&KeyProperty{Name: "id", Type: Type{Kind: KindInt64}},
		&VectorProperty{Name: "emb", Dimensions: 3000, Index: IndexFlat},
	)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSchema_Columns(t *testing.T) {
	s, err := NewSchema("hotels", testProperties()...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	withVectors := s.Columns(true)
	if len(withVectors) != 3 {
		t.Errorf("expected 3 columns with vectors, got %v", withVectors)
	}
	withoutVectors := s.Columns(false)
	if len(withoutVectors) != 2 {
		t.Errorf("expected 2 columns without vectors, got %v", withoutVectors)
	}
	for _, c := range withoutVectors {
		if c == "emb" {
			t.Errorf("vector column leaked into projection: %v", withoutVectors)
		}
	}
}

func TestSchema_VectorDefaultsToFirst(t *testing.T) {
	s, err := NewSchema("hotels",
		&KeyProperty{Name: "id", Type: Type{Kind: KindInt64}},
		&VectorProperty{Name: "emb1", Dimensions: 4},
		&VectorProperty{Name: "emb2", Dimensions: 8},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vp, ok := s.Vector("")
	if !ok || vp.ColumnName() != "emb1" {
		t.Errorf("expected default vector emb1, got %v", vp)
	}
	vp, ok = s.Vector("emb2")
	if !ok || vp.Dimensions != 8 {
		t.Errorf("expected emb2 with 8 dims, got %v", vp)
	}
	if _, ok := s.Vector("name"); ok {
		t.Error("expected lookup miss for unknown vector name")
	}
}

func TestSchema_StorageNameOverride(t *testing.T) {
	s, err := NewSchema("hotels",
		&KeyProperty{Name: "HotelID", StorageName: "hotel_id", Type: Type{Kind: KindString}},
		&DataProperty{Name: "HotelName", StorageName: "hotel_name", Type: Type{Kind: KindString}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.HasColumn("hotel_id") || s.HasColumn("HotelID") {
		t.Error("storage name override not applied to column lookup")
	}
	if s.Key().ColumnName() != "hotel_id" {
		t.Errorf("expected key column hotel_id, got %q", s.Key().ColumnName())
	}
}

func TestType_String(t *testing.T) {
	cases := map[string]Type{
		"int64":     {Kind: KindInt64},
		"[]string":  ListOf(Type{Kind: KindString}),
		"float64?":  NullableOf(Type{Kind: KindFloat64}),
		"[]int32?":  NullableOf(ListOf(Type{Kind: KindInt32})),
	}
	for want, typ := range cases {
		if got := typ.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
