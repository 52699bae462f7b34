package memstore

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/Aleph-Alpha/recordstore/v1/pgvector"
)

func TestRebind(t *testing.T) {
	got := rebind(`SELECT "id" FROM "t" WHERE "a" = $1 AND "b" = ANY($2) LIMIT 10`)
	want := `SELECT "id" FROM "t" WHERE "a" = ? AND "b" = ANY(?) LIMIT 10`
	if got != want {
		t.Errorf("rebind mismatch:\n got  %q\n want %q", got, want)
	}

	// Multi-digit placeholders rewrite as one marker each.
	if got := rebind("$9 $10 $11"); got != "? ? ?" {
		t.Errorf("multi-digit rebind wrong: %q", got)
	}
}

// The batch commands bind their key list as one array parameter. gorm splits
// a bare slice into comma-joined placeholders, turning "id" = ANY($1) into
// the invalid "id" = ANY($1,$2), so bindArgs must hand the list to the driver
// as a single array value.
func TestBindArgs_BatchKeysSingleArrayValue(t *testing.T) {
	s, err := memorySchema("memories", 3)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	cmd, err := pgvector.BuildGetBatch(s, "public", anyKeys([]string{"mem-1", "mem-2"}), false)
	if err != nil {
		t.Fatalf("building command: %v", err)
	}
	args := bindArgs(cmd)
	if len(args) != 1 {
		t.Fatalf("expected one argument, got %d", len(args))
	}

	valuer, ok := args[0].(driver.Valuer)
	if !ok {
		t.Fatalf("batch keys must bind as one driver value, got %T", args[0])
	}
	value, err := valuer.Value()
	if err != nil {
		t.Fatalf("rendering array value: %v", err)
	}
	if value != `{"mem-1","mem-2"}` {
		t.Errorf("array value wrong: %v", value)
	}
}

func TestBindArgs_ScalarsPassThrough(t *testing.T) {
	s, err := memorySchema("memories", 3)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	cmd := pgvector.BuildGet(s, "public", "mem-1", false)
	args := bindArgs(cmd)
	if len(args) != 1 || args[0] != "mem-1" {
		t.Errorf("scalar key must bind unchanged: %v", args)
	}
}

func TestRecordRowRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	rec := MemoryRecord{
		ID:                 "mem-1",
		Text:               "some text",
		Description:        "desc",
		AdditionalMetadata: `{"k":"v"}`,
		ExternalSourceName: "source",
		IsReference:        true,
		Timestamp:          &now,
		Embedding:          []float32{1, 2, 3},
	}

	out := rowToRecord(recordToRow(rec))
	if out.ID != rec.ID || out.Text != rec.Text || out.Description != rec.Description {
		t.Errorf("text fields lost: %+v", out)
	}
	if out.AdditionalMetadata != rec.AdditionalMetadata || out.ExternalSourceName != rec.ExternalSourceName {
		t.Errorf("metadata fields lost: %+v", out)
	}
	if !out.IsReference {
		t.Error("is_reference lost")
	}
	if out.Timestamp == nil || !out.Timestamp.Equal(now) {
		t.Errorf("timestamp lost: %v", out.Timestamp)
	}
	if len(out.Embedding) != 3 {
		t.Errorf("embedding lost: %v", out.Embedding)
	}
}

func TestRecordRowRoundTrip_NilTimestamp(t *testing.T) {
	out := rowToRecord(recordToRow(MemoryRecord{ID: "mem-2"}))
	if out.Timestamp != nil {
		t.Errorf("expected nil timestamp, got %v", out.Timestamp)
	}
}

func TestMemorySchema(t *testing.T) {
	s, err := memorySchema("facts", 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "facts" {
		t.Errorf("schema name wrong: %q", s.Name())
	}
	vectors := s.Vectors()
	if len(vectors) != 1 || vectors[0].Dimensions != 128 {
		t.Fatalf("vector property wrong: %+v", vectors)
	}
}
