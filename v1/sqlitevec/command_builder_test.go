package sqlitevec

import (
	"errors"
	"strings"
	"testing"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

func testSchema(t *testing.T) *record.Schema {
	t.Helper()
	s, err := record.NewSchema("hotels",
		&record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindInt64}},
		&record.DataProperty{Name: "name", Type: record.Type{Kind: record.KindString}},
		&record.VectorProperty{Name: "emb", Dimensions: 4, Distance: record.EuclideanDistance},
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func TestBuildCreateTable(t *testing.T) {
	cmd, err := BuildCreateTable(testSchema(t), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(cmd.Text, "CREATE TABLE IF NOT EXISTS") {
		t.Errorf("missing IF NOT EXISTS prefix: %q", cmd.Text)
	}
	if !strings.Contains(cmd.Text, `"hotels"`) {
		t.Errorf("table not quoted: %q", cmd.Text)
	}
	if strings.Contains(cmd.Text, ".") {
		t.Errorf("sqlite tables must not be schema-qualified: %q", cmd.Text)
	}
	if got := strings.Count(cmd.Text, "PRIMARY KEY"); got != 1 {
		t.Errorf("expected exactly one PRIMARY KEY clause, got %d in %q", got, cmd.Text)
	}
	if !strings.Contains(cmd.Text, `"id" INTEGER PRIMARY KEY`) {
		t.Errorf("key column definition wrong: %q", cmd.Text)
	}
	if !strings.Contains(cmd.Text, `"name" TEXT NOT NULL`) {
		t.Errorf("data column definition wrong: %q", cmd.Text)
	}
	if !strings.Contains(cmd.Text, `"emb" BLOB`) {
		t.Errorf("vector column definition wrong: %q", cmd.Text)
	}
	if len(cmd.Params) != 0 {
		t.Errorf("DDL must not carry parameters, got %v", cmd.Params)
	}
}

func TestBuildCreateTable_ListTypeRejected(t *testing.T) {
	s, err := record.NewSchema("notes",
		&record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindString}},
		&record.DataProperty{Name: "tags", Type: record.ListOf(record.Type{Kind: record.KindString})},
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	if _, err := BuildCreateTable(s, true); !errors.Is(err, record.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType for list column, got %v", err)
	}
}

func TestBuildCreateVectorIndex_AlwaysRejected(t *testing.T) {
	s, err := record.NewSchema("docs",
		&record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindString}},
		&record.VectorProperty{Name: "emb", Dimensions: 8, Index: record.IndexHNSW},
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	if _, err := BuildCreateVectorIndex(s, s.Vectors()[0]); !errors.Is(err, record.ErrUnsupportedIndexKind) {
		t.Fatalf("expected ErrUnsupportedIndexKind, got %v", err)
	}
}

func TestBuildUpsert(t *testing.T) {
	s := testSchema(t)
	cmd, err := BuildUpsert(s, record.Row{
		"id":   int64(7),
		"name": "Grand",
		"emb":  []float32{1, 2, 3, 4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantText := `INSERT INTO "hotels" ("id", "name", "emb") VALUES (?1, ?2, ?3)` +
		` ON CONFLICT ("id") DO UPDATE SET "name" = excluded."name", "emb" = excluded."emb"`
	if cmd.Text != wantText {
		t.Errorf("upsert text mismatch:\n got  %q\n want %q", cmd.Text, wantText)
	}
	if len(cmd.Params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(cmd.Params))
	}
	if cmd.Params[0].Value != int64(7) || cmd.Params[1].Value != "Grand" {
		t.Errorf("param order does not match placeholder order: %v", cmd.Params)
	}
	if _, ok := cmd.Params[2].Value.([]byte); !ok {
		t.Errorf("vector param must be serialized to a blob, got %T", cmd.Params[2].Value)
	}
}

func TestBuildUpsert_UnknownColumn(t *testing.T) {
	s := testSchema(t)
	_, err := BuildUpsert(s, record.Row{"id": int64(1), "bogus": "x"})
	if !errors.Is(err, record.ErrUnresolvedProperty) {
		t.Fatalf("expected ErrUnresolvedProperty, got %v", err)
	}
}

func TestBuildUpsert_MissingKey(t *testing.T) {
	s := testSchema(t)
	_, err := BuildUpsert(s, record.Row{"name": "No Key"})
	if !errors.Is(err, record.ErrUnresolvedProperty) {
		t.Fatalf("expected ErrUnresolvedProperty, got %v", err)
	}
}

func TestBuildUpsertBatch_PlaceholderGrid(t *testing.T) {
	s := testSchema(t)
	rows := []record.Row{
		{"id": int64(1), "name": "a", "emb": []float32{1, 0, 0, 0}},
		{"id": int64(2), "name": "b", "emb": []float32{0, 1, 0, 0}},
		{"id": int64(3), "name": "c", "emb": []float32{0, 0, 1, 0}},
	}
	cmd, err := BuildUpsertBatch(s, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Row r, column c binds placeholder r*3 + c + 1.
	if !strings.Contains(cmd.Text, "(?1, ?2, ?3), (?4, ?5, ?6), (?7, ?8, ?9)") {
		t.Errorf("value grid wrong: %q", cmd.Text)
	}
	if len(cmd.Params) != 9 {
		t.Fatalf("expected 9 params, got %d", len(cmd.Params))
	}
	if cmd.Params[3].Value != int64(2) || cmd.Params[4].Value != "b" {
		t.Errorf("params are not the row-major flattening: %v", cmd.Params)
	}
}

func TestBuildUpsertBatch_Empty(t *testing.T) {
	if _, err := BuildUpsertBatch(testSchema(t), nil); !errors.Is(err, record.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestBuildGet(t *testing.T) {
	cmd := BuildGet(testSchema(t), int64(5), false)
	want := `SELECT "id", "name" FROM "hotels" WHERE "id" = ?1`
	if cmd.Text != want {
		t.Errorf("get text mismatch:\n got  %q\n want %q", cmd.Text, want)
	}
	if len(cmd.Params) != 1 || cmd.Params[0].Value != int64(5) {
		t.Errorf("key param wrong: %v", cmd.Params)
	}
}

func TestBuildGetBatch_PerKeyPlaceholders(t *testing.T) {
	cmd, err := BuildGetBatch(testSchema(t), []any{int64(1), int64(2), int64(3)}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(cmd.Text, `"id" IN (?1, ?2, ?3)`) {
		t.Errorf("keys must bind one placeholder each: %q", cmd.Text)
	}
	if !strings.Contains(cmd.Text, `"emb"`) {
		t.Errorf("includeVectors must project vector columns: %q", cmd.Text)
	}
	if len(cmd.Params) != 3 {
		t.Errorf("expected 3 key params, got %d", len(cmd.Params))
	}
}

func TestBuildDeleteBatch(t *testing.T) {
	cmd, err := BuildDeleteBatch(testSchema(t), []any{int64(1), int64(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `DELETE FROM "hotels" WHERE "id" IN (?1, ?2)`
	if cmd.Text != want {
		t.Errorf("delete batch text mismatch:\n got  %q\n want %q", cmd.Text, want)
	}
}

func TestBuildDeleteBatch_Empty(t *testing.T) {
	if _, err := BuildDeleteBatch(testSchema(t), nil); !errors.Is(err, record.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestBuildSelect_FilterSortPagination(t *testing.T) {
	s := testSchema(t)
	cmd, err := BuildSelect(s,
		record.NewFilter(record.NewEqualTo("name", "Grand")),
		[]record.Sort{record.Descending("id")},
		10, 5, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `SELECT "id", "name" FROM "hotels" WHERE "name" = ?1 ORDER BY "id" DESC LIMIT 10 OFFSET 5`
	if cmd.Text != want {
		t.Errorf("select text mismatch:\n got  %q\n want %q", cmd.Text, want)
	}
	if len(cmd.Params) != 1 || cmd.Params[0].Value != "Grand" {
		t.Errorf("filter param wrong: %v", cmd.Params)
	}
}

func TestBuildDropTable(t *testing.T) {
	cmd := BuildDropTable(testSchema(t))
	if cmd.Text != `DROP TABLE IF EXISTS "hotels"` {
		t.Errorf("drop text mismatch: %q", cmd.Text)
	}
}

func TestBuildTableExists(t *testing.T) {
	cmd := BuildTableExists(testSchema(t))
	if !strings.Contains(cmd.Text, "sqlite_master") {
		t.Errorf("existence probe must query sqlite_master: %q", cmd.Text)
	}
	if len(cmd.Params) != 1 || cmd.Params[0].Value != "hotels" {
		t.Errorf("probe param wrong: %v", cmd.Params)
	}
}

func TestQuoteIdentifier_EmbeddedQuote(t *testing.T) {
	if got := quoteIdentifier(`we"ird`); got != `"we""ird"` {
		t.Errorf("embedded quote not doubled: %q", got)
	}
}
