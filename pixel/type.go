package pixel

import "fmt"

// Type identifies the scalar type of the samples held by a Buffer.
type Type uint8

// Scalar types.
const (
	Invalid Type = iota
	Uint8
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Float16
	Float32
	Float64
)

// Kind is the encoding family of a scalar type.
type Kind uint8

// Scalar kinds.
const (
	KindUnknown Kind = iota
	KindUnsigned
	KindSigned
	KindFloat
)

var typeInfos = [...]struct {
	name string
	size int
	kind Kind
}{
	Invalid: {"invalid", 0, KindUnknown},
	Uint8:   {"uint8", 1, KindUnsigned},
	Uint16:  {"uint16", 2, KindUnsigned},
	Uint32:  {"uint32", 4, KindUnsigned},
	Uint64:  {"uint64", 8, KindUnsigned},
	Int8:    {"int8", 1, KindSigned},
	Int16:   {"int16", 2, KindSigned},
	Int32:   {"int32", 4, KindSigned},
	Int64:   {"int64", 8, KindSigned},
	Float16: {"float16", 2, KindFloat},
	Float32: {"float32", 4, KindFloat},
	Float64: {"float64", 8, KindFloat},
}

func (t Type) valid() bool {
	return t > Invalid && int(t) < len(typeInfos)
}

// Size returns the size in bytes of one scalar, or 0 for an invalid type.
func (t Type) Size() int {
	if !t.valid() {
		return 0
	}
	return typeInfos[t].size
}

// Bits returns the size in bits of one scalar.
func (t Type) Bits() int {
	return 8 * t.Size()
}

// Kind returns the encoding family of the type.
func (t Type) Kind() Kind {
	if !t.valid() {
		return KindUnknown
	}
	return typeInfos[t].kind
}

// String implements Stringer.
func (t Type) String() string {
	if !t.valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeInfos[t].name
}
