package pixel

import (
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Scalar is the set of Go types a Buffer can be built from or unpacked to.
type Scalar interface {
	uint8 | uint16 | uint32 | uint64 |
		int8 | int16 | int32 | int64 |
		float16.Float16 | float32 | float64
}

// TypeOf returns the Type matching T.
func TypeOf[T Scalar]() Type {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return Invalid
}

// FromSlice builds a buffer of the given shape from interleaved row-major samples.
func FromSlice[T Scalar](channels, rows, cols int, data []T) (*Buffer, error) {
	b, err := New(TypeOf[T](), channels, rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != b.Len() {
		return nil, errors.Errorf("pixel: %d samples for shape (%d, %d, %d)", len(data), channels, rows, cols)
	}

	p := b.Pix
	switch s := any(data).(type) {
	case []uint8:
		copy(p, s)
	case []int8:
		for i, v := range s {
			p[i] = uint8(v)
		}
	case []uint16:
		for i, v := range s {
			enc.PutUint16(p[2*i:], v)
		}
	case []int16:
		for i, v := range s {
			enc.PutUint16(p[2*i:], uint16(v))
		}
	case []float16.Float16:
		for i, v := range s {
			enc.PutUint16(p[2*i:], v.Bits())
		}
	case []uint32:
		for i, v := range s {
			enc.PutUint32(p[4*i:], v)
		}
	case []int32:
		for i, v := range s {
			enc.PutUint32(p[4*i:], uint32(v))
		}
	case []float32:
		for i, v := range s {
			enc.PutUint32(p[4*i:], math.Float32bits(v))
		}
	case []uint64:
		for i, v := range s {
			enc.PutUint64(p[8*i:], v)
		}
	case []int64:
		for i, v := range s {
			enc.PutUint64(p[8*i:], uint64(v))
		}
	case []float64:
		for i, v := range s {
			enc.PutUint64(p[8*i:], math.Float64bits(v))
		}
	}
	return b, nil
}

// Elements unpacks the samples of b into a new slice.
// It fails when T does not match the buffer type.
func Elements[T Scalar](b *Buffer) ([]T, error) {
	if t := TypeOf[T](); t != b.Type {
		return nil, errors.Errorf("pixel: cannot unpack %v samples as %v", b.Type, t)
	}

	out := make([]T, b.Len())
	p := b.Pix
	switch s := any(out).(type) {
	case []uint8:
		copy(s, p)
	case []int8:
		for i := range s {
			s[i] = int8(p[i])
		}
	case []uint16:
		for i := range s {
			s[i] = enc.Uint16(p[2*i:])
		}
	case []int16:
		for i := range s {
			s[i] = int16(enc.Uint16(p[2*i:]))
		}
	case []float16.Float16:
		for i := range s {
			s[i] = float16.Frombits(enc.Uint16(p[2*i:]))
		}
	case []uint32:
		for i := range s {
			s[i] = enc.Uint32(p[4*i:])
		}
	case []int32:
		for i := range s {
			s[i] = int32(enc.Uint32(p[4*i:]))
		}
	case []float32:
		for i := range s {
			s[i] = math.Float32frombits(enc.Uint32(p[4*i:]))
		}
	case []uint64:
		for i := range s {
			s[i] = enc.Uint64(p[8*i:])
		}
	case []int64:
		for i := range s {
			s[i] = int64(enc.Uint64(p[8*i:]))
		}
	case []float64:
		for i := range s {
			s[i] = math.Float64frombits(enc.Uint64(p[8*i:]))
		}
	}
	return out, nil
}
