// Package vector provides the embedding blob codec, cosine similarity, and deterministic ranking.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ElementSize is the encoded width of one vector component.
const ElementSize = 4

// Encode packs v as consecutive little-endian IEEE-754 float32 values.
func Encode(v []float32) []byte {
	out := make([]byte, len(v)*ElementSize)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*ElementSize:(i+1)*ElementSize], math.Float32bits(x))
	}
	return out
}

// Decode unpacks a blob written by Encode. The blob length must be a positive multiple of ElementSize.
func Decode(b []byte) ([]float32, error) {
	if len(b) == 0 || len(b)%ElementSize != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d", len(b))
	}
	out := make([]float32, len(b)/ElementSize)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*ElementSize : (i+1)*ElementSize]))
	}
	return out, nil
}

// Dimension returns the vector length encoded in a blob of n bytes, or 0 if n is not valid.
func Dimension(n int) int {
	if n <= 0 || n%ElementSize != 0 {
		return 0
	}
	return n / ElementSize
}
