package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLength is returned when a persisted vector is not a whole number of float32 words.
var ErrInvalidLength = errors.New("vector: byte length is not a multiple of 4")

// Encode serializes v as big-endian IEEE-754 float32 words in dimension order.
func Encode(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.BigEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode is the inverse of Encode and preserves exact bit patterns.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidLength, len(data))
	}

	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.BigEndian.Uint32(data[i*4:]))
	}
	return v, nil
}
