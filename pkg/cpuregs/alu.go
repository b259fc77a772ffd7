package cpuregs

import "github.com/dgdev1024/g10/internal/bitutil"

// This file implements the ALU flag-computation rules of spec §4.2's table,
// parameterized over the operand width (8/16/32 bits) and exposed as
// per-width functions since each instruction family is fixed to one width.

func fullMask(width int) uint32 { return bitutil.AllOnes[uint32](width) }
func halfMask(width int) uint32 { return bitutil.AllOnes[uint32](width - 4) }
func signBit(width int) uint32  { return 1 << uint(width-1) }
func signOf(v uint32, width int) bool { return v&signBit(width) != 0 }

func addCore(width int, a, b uint32, carryIn bool) (uint32, Flags) {
	fm, hm := fullMask(width), halfMask(width)
	var cin uint64
	if carryIn {
		cin = 1
	}

	full := uint64(a&fm) + uint64(b&fm) + cin
	half := uint64(a&hm) + uint64(b&hm) + cin

	result := uint32(full) & fm

	var f Flags
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(half > uint64(hm))
	f.SetC(full > uint64(fm))

	aSign, bSign, rSign := signOf(a&fm, width), signOf(b&fm, width), signOf(result, width)
	f.SetV(aSign == bSign && rSign != aSign)

	return result, f
}

func subCore(width int, a, b uint32, borrowIn bool) (uint32, Flags) {
	fm, hm := fullMask(width), halfMask(width)
	var bin int64
	if borrowIn {
		bin = 1
	}

	diff := int64(a&fm) - int64(b&fm) - bin
	result := uint32(uint64(diff)) & fm

	var f Flags
	f.SetZ(result == 0)
	f.SetN(true)

	var bin64 uint64
	if borrowIn {
		bin64 = 1
	}
	f.SetH(uint64(a&hm) < uint64(b&hm)+bin64)
	f.SetC(diff < 0)

	aSign, bSign, rSign := signOf(a&fm, width), signOf(b&fm, width), signOf(result, width)
	f.SetV(aSign != bSign && rSign != aSign)

	return result, f
}

// Add8/Add16/Add32 compute a+b with no carry-in, per spec's "add" row.
func Add8(a, b uint8) (uint8, Flags)     { r, f := addCore(8, uint32(a), uint32(b), false); return uint8(r), f }
func Add16(a, b uint16) (uint16, Flags)  { r, f := addCore(16, uint32(a), uint32(b), false); return uint16(r), f }
func Add32(a, b uint32) (uint32, Flags)  { return addCore(32, a, b, false) }

// Adc8/Adc16/Adc32 compute a+b+carryIn, per spec's "carry-in participates for ADC/SBC variants."
func Adc8(a, b uint8, carryIn bool) (uint8, Flags) {
	r, f := addCore(8, uint32(a), uint32(b), carryIn)
	return uint8(r), f
}
func Adc16(a, b uint16, carryIn bool) (uint16, Flags) {
	r, f := addCore(16, uint32(a), uint32(b), carryIn)
	return uint16(r), f
}
func Adc32(a, b uint32, carryIn bool) (uint32, Flags) { return addCore(32, a, b, carryIn) }

// Sub8/Sub16/Sub32 compute a-b, per spec's "sub" row.
func Sub8(a, b uint8) (uint8, Flags)    { r, f := subCore(8, uint32(a), uint32(b), false); return uint8(r), f }
func Sub16(a, b uint16) (uint16, Flags) { r, f := subCore(16, uint32(a), uint32(b), false); return uint16(r), f }
func Sub32(a, b uint32) (uint32, Flags) { return subCore(32, a, b, false) }

func Sbc8(a, b uint8, borrowIn bool) (uint8, Flags) {
	r, f := subCore(8, uint32(a), uint32(b), borrowIn)
	return uint8(r), f
}
func Sbc16(a, b uint16, borrowIn bool) (uint16, Flags) {
	r, f := subCore(16, uint32(a), uint32(b), borrowIn)
	return uint16(r), f
}
func Sbc32(a, b uint32, borrowIn bool) (uint32, Flags) { return subCore(32, a, b, borrowIn) }

// Cmp8/Cmp16/Cmp32 compute flags for a-b but discard the result, per spec's
// "cmp" row ("CMP discards the result but writes flags.").
func Cmp8(a, b uint8) Flags    { _, f := Sub8(a, b); return f }
func Cmp16(a, b uint16) Flags  { _, f := Sub16(a, b); return f }
func Cmp32(a, b uint32) Flags  { _, f := Sub32(a, b); return f }

func incCore(width int, a uint32, carryUnchanged bool, oldC Flags) (uint32, Flags) {
	fm, hm := fullMask(width), halfMask(width)
	result := (a + 1) & fm

	var f Flags
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH((a & hm) == hm)
	if carryUnchanged {
		f.SetC(oldC.C())
	}

	maxPositive := signBit(width) - 1
	f.SetV(a&fm == maxPositive)

	return result, f
}

func decCore(width int, a uint32, oldC Flags) (uint32, Flags) {
	fm, hm := fullMask(width), halfMask(width)
	result := (a - 1) & fm

	var f Flags
	f.SetZ(result == 0)
	f.SetN(true)
	f.SetH((a & hm) == 0)
	f.SetC(oldC.C())

	f.SetV(a&fm == signBit(width))

	return result, f
}

// Inc8/Inc16/Inc32 increment a, per spec's "inc" row. oldFlags.C() is
// preserved since INC never touches the carry flag.
func Inc8(a uint8, oldFlags Flags) (uint8, Flags) {
	r, f := incCore(8, uint32(a), true, oldFlags)
	return uint8(r), f
}
func Inc16(a uint16, oldFlags Flags) (uint16, Flags) {
	r, f := incCore(16, uint32(a), true, oldFlags)
	return uint16(r), f
}
func Inc32(a uint32, oldFlags Flags) (uint32, Flags) { return incCore(32, a, true, oldFlags) }

// Dec8/Dec16/Dec32 decrement a, per spec's "dec" row.
func Dec8(a uint8, oldFlags Flags) (uint8, Flags) {
	r, f := decCore(8, uint32(a), oldFlags)
	return uint8(r), f
}
func Dec16(a uint16, oldFlags Flags) (uint16, Flags) {
	r, f := decCore(16, uint32(a), oldFlags)
	return uint16(r), f
}
func Dec32(a uint32, oldFlags Flags) (uint32, Flags) { return decCore(32, a, oldFlags) }

// And computes a&b per spec's "and" row (Z; N=0; H=1; C=0; V=0).
func And8(a, b uint8) (uint8, Flags) {
	result := a & b
	var f Flags
	f.SetZ(result == 0)
	f.SetH(true)
	return result, f
}

// Or computes a|b per spec's "or" row (Z; N=0; H=0; C=0; V=0).
func Or8(a, b uint8) (uint8, Flags) {
	result := a | b
	var f Flags
	f.SetZ(result == 0)
	return result, f
}

// Xor computes a^b per spec's "xor" row (Z; N=0; H=0; C=0; V=0).
func Xor8(a, b uint8) (uint8, Flags) {
	result := a ^ b
	var f Flags
	f.SetZ(result == 0)
	return result, f
}

// Not computes the one's complement of a, per spec's "not" row
// (N=1; H=1; V=0; Z and C unchanged).
func Not8(a uint8, prev Flags) (uint8, Flags) {
	result := ^a
	f := prev
	f.SetN(true)
	f.SetH(true)
	f.SetV(false)
	return result, f
}

// Sla shifts a left by one bit, per spec's "sla" row (C = bit 7 before; V unchanged).
func Sla8(a uint8, prev Flags) (uint8, Flags) {
	f := prev
	f.SetC(a&0x80 != 0)
	result := a << 1
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	return result, f
}

// Sra shifts a right by one bit preserving the sign bit, per spec's "sra" row.
func Sra8(a uint8, prev Flags) (uint8, Flags) {
	f := prev
	f.SetC(a&0x01 != 0)
	result := (a >> 1) | (a & 0x80)
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	return result, f
}

// Srl shifts a right by one bit, clearing the sign bit, per spec's "srl" row.
func Srl8(a uint8, prev Flags) (uint8, Flags) {
	f := prev
	f.SetC(a&0x01 != 0)
	result := a >> 1
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	return result, f
}

// Rl rotates a left through the carry flag, per spec's "rl" row.
func Rl8(a uint8, prev Flags) (uint8, Flags) {
	f := prev
	oldCarry := uint8(0)
	if prev.C() {
		oldCarry = 1
	}
	f.SetC(a&0x80 != 0)
	result := (a << 1) | oldCarry
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	return result, f
}

// Rr rotates a right through the carry flag, per spec's "rr" row.
func Rr8(a uint8, prev Flags) (uint8, Flags) {
	f := prev
	oldCarry := uint8(0)
	if prev.C() {
		oldCarry = 0x80
	}
	f.SetC(a&0x01 != 0)
	result := (a >> 1) | oldCarry
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	return result, f
}

// Rlc rotates a left circularly, the shifted-out bit feeding back into bit 0.
func Rlc8(a uint8, prev Flags) (uint8, Flags) {
	f := prev
	out := a & 0x80
	f.SetC(out != 0)
	result := (a << 1) | (out >> 7)
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	return result, f
}

// Rrc rotates a right circularly, the shifted-out bit feeding back into bit 7.
func Rrc8(a uint8, prev Flags) (uint8, Flags) {
	f := prev
	out := a & 0x01
	f.SetC(out != 0)
	result := (a >> 1) | (out << 7)
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	return result, f
}

// Swap4 swaps the high and low nibbles of an 8-bit value, per spec's "swap" row.
func Swap4(a uint8, prev Flags) (uint8, Flags) {
	f := prev
	result := (a << 4) | (a >> 4)
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	f.SetC(false)
	return result, f
}

// Swap8 swaps the high and low bytes of a 16-bit value.
func Swap8(a uint16, prev Flags) (uint16, Flags) {
	f := prev
	result := (a << 8) | (a >> 8)
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	f.SetC(false)
	return result, f
}

// Swap16 swaps the high and low words of a 32-bit value.
func Swap16(a uint32, prev Flags) (uint32, Flags) {
	f := prev
	result := (a << 16) | (a >> 16)
	f.SetZ(result == 0)
	f.SetN(false)
	f.SetH(false)
	f.SetC(false)
	return result, f
}

// BitTest implements spec's "bit y" row: Z is the complement of the tested
// bit; N=0; H=1; C and V are left unchanged by the caller.
func BitTest(a uint8, bit int, prev Flags) Flags {
	f := prev
	tested := (a>>uint(bit))&1 != 0
	f.SetZ(!tested)
	f.SetN(false)
	f.SetH(true)
	return f
}

// Daa adjusts L0 per spec's "daa" row, implementing the standard
// nibble-correction algorithm: add branch corrects for decimal carries out
// of either nibble; subtract branch (N set) reverses an ADD's corrections.
func Daa(l0 uint8, prev Flags) (uint8, Flags) {
	a := l0
	var adjust uint8
	carry := prev.C()

	if prev.N() {
		if prev.H() {
			adjust |= 0x06
		}
		if prev.C() {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if prev.H() || (a&0x0F) > 9 {
			adjust |= 0x06
		}
		if prev.C() || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	}

	f := prev
	f.SetZ(a == 0)
	f.SetH(false)
	f.SetC(carry)

	return a, f
}
