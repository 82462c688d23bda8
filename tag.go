package tiff

import (
	"fmt"
	"math"
	"math/big"
)

// Tag is one decoded IFD entry.
//
// Integer types are held as their value (signed types sign-extended),
// FLOAT and DOUBLE as their IEEE bits and (S)RATIONAL as numerator<<32|denominator.
type Tag struct {
	ID       uint16
	DataType DataType
	Count    uint32
	val      []uint64
}

// FirstVal returns the first value of the entry, or 0 if the entry is empty.
func (t Tag) FirstVal() uint {
	if len(t.val) == 0 {
		return 0
	}
	return uint(t.val[0])
}

// Values returns a copy of the entry values as unsigned integers.
func (t Tag) Values() []uint {
	u := make([]uint, len(t.val))
	for i, v := range t.val {
		u[i] = uint(v)
	}
	return u
}

// Len returns the number of values held by the entry.
func (t Tag) Len() int {
	return len(t.val)
}

// Int returns the value at index as a signed integer, or 0 if index is out of range.
func (t Tag) Int(index int) int64 {
	if len(t.val) <= index {
		return 0
	}
	return int64(t.val[index])
}

// rational returns the rational at index of the entry,
// or 0 if the index does not exist or the denominator is zero.
func (t Tag) rational(index int) *big.Rat {
	if len(t.val) <= index {
		return new(big.Rat)
	}
	num := int64(uint32(t.val[index] >> 32))
	denom := int64(uint32(t.val[index]))
	if t.DataType == DTSRational {
		num = int64(int32(t.val[index] >> 32))
		denom = int64(int32(t.val[index]))
	}
	if denom == 0 {
		return new(big.Rat)
	}
	return big.NewRat(num, denom)
}

// AsFloat returns the converted float64 at index of the entry,
// or 0 if the index does not exist.
func (t Tag) AsFloat(index int) float64 {
	if len(t.val) <= index {
		return 0
	}
	switch t.DataType {
	case DTRational, DTSRational:
		v, _ := t.rational(index).Float64()
		return v
	case DTFloat:
		return float64(math.Float32frombits(uint32(t.val[index])))
	case DTDouble:
		return math.Float64frombits(t.val[index])
	case DTSByte, DTSShort, DTSLong:
		return float64(t.Int(index))
	default:
		return float64(t.val[index])
	}
}

// uniform reports whether all the values of the entry are equal.
func (t Tag) uniform() bool {
	for _, v := range t.val {
		if v != t.val[0] {
			return false
		}
	}
	return true
}

// Name returns the common name of the tag.
func (t Tag) Name() string {
	return tagname(t.ID)
}

// PrettyPrintedValue returns the formatted value.
func (t Tag) PrettyPrintedValue() string {
	return valuename(t)
}

// String implements Stringer.
func (t Tag) String() string {
	return fmt.Sprintf("%s: %s", t.Name(), t.PrettyPrintedValue())
}
