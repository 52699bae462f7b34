package sqlitevec

import "github.com/Aleph-Alpha/recordstore/v1/record"

// SearchRequest represents a single nearest-neighbor query against a
// collection.
type SearchRequest struct {
	// VectorField is the storage name of the vector property to search
	// against. Empty selects the schema's first vector property.
	VectorField string `json:"vectorField,omitempty"`

	// Vector is the query embedding. Its length must match the configured
	// dimensionality of the vector property.
	Vector []float32 `json:"vector"`

	// Limit is the maximum number of matches to return.
	Limit int `json:"limit"`

	// Skip is the number of leading matches to skip, for pagination.
	Skip int `json:"skip,omitempty"`

	// Filter restricts the candidate rows before ranking.
	Filter *record.Filter `json:"filter,omitempty"`

	// IncludeVectors requests vector columns in the result rows. Off by
	// default to avoid returning large vectors when only scores are needed.
	IncludeVectors bool `json:"includeVectors,omitempty"`
}

// Match is one search result: the row projection and its distance (or, for
// cosine similarity, post-processed score).
type Match struct {
	Row   record.Row `json:"row"`
	Score float64    `json:"score"`
}

// FindRequest describes a filtered, ordered scan without vector ranking.
type FindRequest struct {
	// Filter restricts the returned rows. Nil or empty returns everything.
	Filter *record.Filter `json:"filter,omitempty"`

	// Sorts orders the result. Empty leaves the order unspecified.
	Sorts []record.Sort `json:"sorts,omitempty"`

	// Limit caps the number of returned rows. Zero or negative means no cap.
	Limit int `json:"limit,omitempty"`

	// Skip is the number of leading rows to skip, for pagination.
	Skip int `json:"skip,omitempty"`

	// IncludeVectors requests vector columns in the result rows.
	IncludeVectors bool `json:"includeVectors,omitempty"`
}
