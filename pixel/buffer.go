// Package pixel holds decoded raster samples.
//
// A Buffer is shaped (Channels, Rows, Cols). Samples are stored row-major with
// the channels of a pixel interleaved, each scalar encoded little-endian in
// Pix, the way image.Gray16 encodes its samples big-endian.
package pixel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

var enc = binary.LittleEndian

// Buffer is an owned, typed, row-major raster.
type Buffer struct {
	Type     Type
	Channels int
	Rows     int
	Cols     int
	Pix      []byte
}

// New allocates a zeroed buffer.
func New(t Type, channels, rows, cols int) (*Buffer, error) {
	if !t.valid() {
		return nil, errors.Errorf("pixel: invalid type %v", t)
	}
	if channels <= 0 || rows < 0 || cols < 0 {
		return nil, errors.Errorf("pixel: invalid shape (%d, %d, %d)", channels, rows, cols)
	}
	return &Buffer{
		Type:     t,
		Channels: channels,
		Rows:     rows,
		Cols:     cols,
		Pix:      make([]byte, channels*rows*cols*t.Size()),
	}, nil
}

// Bounds returns the extent of the buffer, X being the column axis.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Cols, b.Rows)
}

// PixelSize returns the number of bytes of one pixel (all channels).
func (b *Buffer) PixelSize() int {
	return b.Channels * b.Type.Size()
}

// Stride returns the number of bytes between two vertically adjacent pixels.
func (b *Buffer) Stride() int {
	return b.Cols * b.PixelSize()
}

// Len returns the number of scalars held by the buffer.
func (b *Buffer) Len() int {
	return b.Channels * b.Rows * b.Cols
}

// Row returns the bytes of row y. The slice aliases Pix.
func (b *Buffer) Row(y int) []byte {
	s := b.Stride()
	return b.Pix[y*s : (y+1)*s]
}

// offset returns the index in Pix of the sample c of pixel (x, y).
func (b *Buffer) offset(x, y, c int) int {
	return (y*b.Cols+x)*b.PixelSize() + c*b.Type.Size()
}

// Crop returns a copy of the region r. The result never aliases b.
func (b *Buffer) Crop(r image.Rectangle) (*Buffer, error) {
	if r.Empty() || !r.In(b.Bounds()) {
		return nil, errors.Errorf("pixel: crop %v outside of %v", r, b.Bounds())
	}
	dst, err := New(b.Type, b.Channels, r.Dy(), r.Dx())
	if err != nil {
		return nil, err
	}
	n := dst.Stride()
	for y := 0; y < dst.Rows; y++ {
		i := b.offset(r.Min.X, r.Min.Y+y, 0)
		copy(dst.Row(y), b.Pix[i:i+n])
	}
	return dst, nil
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = append([]byte(nil), b.Pix...)
	return &c
}

// Equal reports whether a and b have the same type, shape and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Type == o.Type &&
		b.Channels == o.Channels &&
		b.Rows == o.Rows &&
		b.Cols == o.Cols &&
		bytes.Equal(b.Pix, o.Pix)
}

// Value returns the sample c of pixel (x, y) converted to float64.
func (b *Buffer) Value(x, y, c int) float64 {
	p := b.Pix[b.offset(x, y, c):]
	switch b.Type {
	case Uint8:
		return float64(p[0])
	case Uint16:
		return float64(enc.Uint16(p))
	case Uint32:
		return float64(enc.Uint32(p))
	case Uint64:
		return float64(enc.Uint64(p))
	case Int8:
		return float64(int8(p[0]))
	case Int16:
		return float64(int16(enc.Uint16(p)))
	case Int32:
		return float64(int32(enc.Uint32(p)))
	case Int64:
		return float64(int64(enc.Uint64(p)))
	case Float16:
		return float64(float16.Frombits(enc.Uint16(p)).Float32())
	case Float32:
		return float64(math.Float32frombits(enc.Uint32(p)))
	case Float64:
		return math.Float64frombits(enc.Uint64(p))
	}
	return 0
}

// SetValue stores v, converted to the buffer type, as the sample c of pixel (x, y).
// Integer conversions truncate like Go conversions do.
func (b *Buffer) SetValue(x, y, c int, v float64) {
	p := b.Pix[b.offset(x, y, c):]
	switch b.Type {
	case Uint8:
		p[0] = uint8(v)
	case Uint16:
		enc.PutUint16(p, uint16(v))
	case Uint32:
		enc.PutUint32(p, uint32(v))
	case Uint64:
		enc.PutUint64(p, uint64(v))
	case Int8:
		p[0] = uint8(int8(v))
	case Int16:
		enc.PutUint16(p, uint16(int16(v)))
	case Int32:
		enc.PutUint32(p, uint32(int32(v)))
	case Int64:
		enc.PutUint64(p, uint64(int64(v)))
	case Float16:
		enc.PutUint16(p, float16.Fromfloat32(float32(v)).Bits())
	case Float32:
		enc.PutUint32(p, math.Float32bits(float32(v)))
	case Float64:
		enc.PutUint64(p, math.Float64bits(v))
	}
}

// String implements Stringer.
func (b *Buffer) String() string {
	return fmt.Sprintf("pixel.Buffer{%v (%d, %d, %d)}", b.Type, b.Channels, b.Rows, b.Cols)
}
