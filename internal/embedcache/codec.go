package embedcache

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pgvector/pgvector-go"
)

// EncodeVector stores vec in the pgvector binary layout: a uint16 dimension,
// a reserved uint16, then big-endian float32 values.
func EncodeVector(vec []float32) ([]byte, error) {
	if len(vec) > math.MaxUint16 {
		return nil, fmt.Errorf("vector dimension %d exceeds %d", len(vec), math.MaxUint16)
	}
	return pgvector.NewVector(vec).EncodeBinary(nil)
}

func DecodeVector(buf []byte) ([]float32, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("encoded vector too short: %d bytes", len(buf))
	}
	dim := int(binary.BigEndian.Uint16(buf[:2]))
	if len(buf) != 4+4*dim {
		return nil, fmt.Errorf("encoded vector size mismatch: dim %d, %d bytes", dim, len(buf))
	}
	var v pgvector.Vector
	if err := v.DecodeBinary(buf); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	out := v.Slice()
	if out == nil {
		out = []float32{}
	}
	return out, nil
}
