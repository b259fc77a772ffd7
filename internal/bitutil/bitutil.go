// Package bitutil provides small bit-manipulation helpers shared by the
// object container, the register file, and the CPU's opcode decoder.
package bitutil

import "golang.org/x/exp/constraints"

const BitsPerByte = 8

// Bits returns the size in bits of n bytes.
func Bits(bytes int) int {
	return bytes * BitsPerByte
}

// AllOnes returns an all-ones bitmask of the given width for an unsigned
// integer type T. width must be in [0, bit-size of T].
func AllOnes[T constraints.Unsigned](width int) T {
	if width <= 0 {
		return 0
	}
	return (T(1) << uint(width)) - T(1)
}

// View is a read/write window over a range of bits of an unsigned integer.
type View[T constraints.Unsigned] struct {
	Bits *T
}

// NewView creates a bit view over the given unsigned integer.
func NewView[T constraints.Unsigned](value *T) View[T] {
	return View[T]{Bits: value}
}

// Value returns the whole underlying value.
func (v View[T]) Value() T {
	return *v.Bits
}

// Read extracts a field of width bits starting at bit.
func (v View[T]) Read(bit int, width int) T {
	return (v.Value() >> uint(bit)) & AllOnes[T](width)
}

// Write replaces a field of width bits starting at bit with value,
// leaving all other bits unchanged. Bits of value beyond width are ignored.
func (v View[T]) Write(value T, bit int, width int) {
	mask := AllOnes[T](width) << uint(bit)
	cleared := (*v.Bits) &^ mask
	*v.Bits = cleared | ((value & AllOnes[T](width)) << uint(bit))
}

// ReadBit returns a single bit as 0 or 1.
func (v View[T]) ReadBit(bit int) T {
	return v.Read(bit, 1)
}

// WriteBit sets a single bit to 0 or 1.
func (v View[T]) WriteBit(bit int, set bool) {
	if set {
		v.Write(1, bit, 1)
	} else {
		v.Write(0, bit, 1)
	}
}
