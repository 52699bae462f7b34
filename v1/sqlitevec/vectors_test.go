package sqlitevec

import (
	"math"
	"testing"
)

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -3.25, float32(math.Pi)}
	blob, err := EncodeVector(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(blob) != 4*len(in) {
		t.Fatalf("expected %d bytes, got %d", 4*len(in), len(blob))
	}

	out, err := DecodeVector(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d components, got %d", len(in), len(out))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("component %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeVector_TruncatedBlob(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for blob not a multiple of 4 bytes")
	}
}
