package memstore

import (
	"fmt"
	"time"

	"github.com/Aleph-Alpha/recordstore/v1/record"
)

// MemoryRecord is the legacy memory entry: a piece of text, its embedding
// and the provenance metadata older callers attach to it. Every collection
// of the store holds records of exactly this shape.
type MemoryRecord struct {
	ID                 string     `json:"id"`
	Text               string     `json:"text"`
	Description        string     `json:"description"`
	AdditionalMetadata string     `json:"additionalMetadata"`
	ExternalSourceName string     `json:"externalSourceName"`
	IsReference        bool       `json:"isReference"`
	Timestamp          *time.Time `json:"timestamp,omitempty"`
	Embedding          []float32  `json:"embedding,omitempty"`
}

// MemoryMatch is one nearest-neighbor result: a record and its cosine
// similarity to the query embedding.
type MemoryMatch struct {
	Record    MemoryRecord `json:"record"`
	Relevance float64      `json:"relevance"`
}

// memorySchema materializes the fixed record schema of a collection. All
// operations of the store lower through it; the embedding uses cosine
// similarity, the scoring older callers expect, and no approximate index.
func memorySchema(collection string, dimensions int) (*record.Schema, error) {
	s, err := record.NewSchema(collection,
		&record.KeyProperty{Name: "id", Type: record.Type{Kind: record.KindString}},
		&record.DataProperty{Name: "text", Type: record.Type{Kind: record.KindString}},
		&record.DataProperty{Name: "description", Type: record.Type{Kind: record.KindString}},
		&record.DataProperty{Name: "additional_metadata", Type: record.Type{Kind: record.KindString}},
		&record.DataProperty{Name: "external_source_name", Type: record.Type{Kind: record.KindString}},
		&record.DataProperty{Name: "is_reference", Type: record.Type{Kind: record.KindBool}},
		&record.DataProperty{Name: "timestamp", Type: record.Type{Kind: record.KindTime, Nullable: true}},
		&record.VectorProperty{
			Name:       "embedding",
			Dimensions: dimensions,
			Distance:   record.CosineSimilarity,
			Index:      record.IndexFlat,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("building schema for collection %q: %w", collection, err)
	}
	return s, nil
}

// recordToRow flattens a memory record into the row shape the command
// builders bind.
func recordToRow(rec MemoryRecord) record.Row {
	row := record.Row{
		"id":                   rec.ID,
		"text":                 rec.Text,
		"description":          rec.Description,
		"additional_metadata":  rec.AdditionalMetadata,
		"external_source_name": rec.ExternalSourceName,
		"is_reference":         rec.IsReference,
		"embedding":            rec.Embedding,
	}
	if rec.Timestamp != nil {
		row["timestamp"] = *rec.Timestamp
	} else {
		row["timestamp"] = nil
	}
	return row
}

// rowToRecord rebuilds a memory record from a decoded result row. Columns
// missing from the projection (the embedding, unless requested) stay at
// their zero value.
func rowToRecord(row record.Row) MemoryRecord {
	rec := MemoryRecord{
		ID:                 asString(row["id"]),
		Text:               asString(row["text"]),
		Description:        asString(row["description"]),
		AdditionalMetadata: asString(row["additional_metadata"]),
		ExternalSourceName: asString(row["external_source_name"]),
	}
	if b, ok := row["is_reference"].(bool); ok {
		rec.IsReference = b
	}
	switch ts := row["timestamp"].(type) {
	case time.Time:
		rec.Timestamp = &ts
	case *time.Time:
		rec.Timestamp = ts
	}
	if emb, ok := row["embedding"].([]float32); ok {
		rec.Embedding = emb
	}
	return rec
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}
