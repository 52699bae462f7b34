package pgvector

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeVector renders a float32 vector as the pgvector text literal
// "[v1,v2,...]". Components are formatted with the shortest representation
// that parses back to the same float32, so DecodeVector(EncodeVector(v))
// reproduces v exactly for all finite inputs.
func EncodeVector(vector []float32) string {
	var sb strings.Builder
	sb.Grow(2 + len(vector)*12)
	sb.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// DecodeVector parses a pgvector text literal back into a float32 vector.
// This is the form pgx returns vector columns in when the pgvector codec is
// not registered on the connection.
func DecodeVector(s string) ([]float32, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, fmt.Errorf("malformed vector literal %q", s)
	}
	body := trimmed[1 : len(trimmed)-1]
	if body == "" {
		return []float32{}, nil
	}

	parts := strings.Split(body, ",")
	vector := make([]float32, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector component %q: %w", part, err)
		}
		vector[i] = float32(v)
	}
	return vector, nil
}
