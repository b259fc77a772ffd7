// Package cpuregs implements the G10 register file described by spec §4.2:
// sixteen 32-bit general registers with overlapping 16/8-bit views, the
// FLAGS byte, and the special registers (PC, SP, IE, IRQ, EC).
package cpuregs

import "fmt"

// sizeClass identifies which overlapping view of a D register a Reg
// addresses.
type sizeClass uint8

const (
	sizeD sizeClass = iota // 32-bit, full register
	sizeW                  // 16-bit, low half
	sizeH                  // 8-bit, bits 8..15
	sizeL                  // 8-bit, bits 0..7
)

// Reg is a typed register identifier: a size class plus an index 0..15,
// packed into a single byte per spec §4.2 ("by a typed identifier that
// encodes both a size class and an index 0..15 in its low nibble").
type Reg uint8

const indexMask = 0x0F

func makeReg(sc sizeClass, index int) Reg {
	if index < 0 || index > 15 {
		panic(fmt.Sprintf("cpuregs: register index %d out of range", index))
	}
	return Reg(uint8(sc)<<4 | uint8(index)&indexMask)
}

// D returns the identifier for the 32-bit register Dn.
func D(n int) Reg { return makeReg(sizeD, n) }

// W returns the identifier for the 16-bit low-half view Wn.
func W(n int) Reg { return makeReg(sizeW, n) }

// H returns the identifier for the 8-bit high-byte view Hn (bits 8..15).
func H(n int) Reg { return makeReg(sizeH, n) }

// L returns the identifier for the 8-bit low-byte view Ln (bits 0..7).
func L(n int) Reg { return makeReg(sizeL, n) }

// Index returns the underlying D-register index 0..15.
func (r Reg) Index() int { return int(r) & indexMask }

func (r Reg) class() sizeClass { return sizeClass(uint8(r) >> 4) }

// Width returns the register view's width in bytes: 4, 2, or 1.
func (r Reg) Width() int {
	switch r.class() {
	case sizeD:
		return 4
	case sizeW:
		return 2
	default:
		return 1
	}
}

func (r Reg) String() string {
	switch r.class() {
	case sizeD:
		return fmt.Sprintf("D%d", r.Index())
	case sizeW:
		return fmt.Sprintf("W%d", r.Index())
	case sizeH:
		return fmt.Sprintf("H%d", r.Index())
	case sizeL:
		return fmt.Sprintf("L%d", r.Index())
	default:
		return fmt.Sprintf("reg(%#x)", uint8(r))
	}
}

// IsAccumulator reports whether r addresses the accumulator slot (D0/W0/L0)
// for its width, which most ALU instruction forms require as destination.
func (r Reg) IsAccumulator() bool { return r.Index() == 0 }

// File holds the sixteen general-purpose registers and the CPU's special
// registers.
type File struct {
	d [16]uint32

	PC    uint32
	SP    uint32
	IE    uint32
	IRQ   uint32
	Flags Flags
	EC    uint8
}

// Read returns the value held by the given register view, zero-extended
// (narrow views are never sign-extended per spec §4.2).
func (f *File) Read(r Reg) uint32 {
	full := f.d[r.Index()]
	switch r.class() {
	case sizeD:
		return full
	case sizeW:
		return full & 0xFFFF
	case sizeH:
		return (full >> 8) & 0xFF
	case sizeL:
		return full & 0xFF
	default:
		panic("cpuregs: unreachable register class")
	}
}

// Write stores value into the given register view. Writes to a narrow view
// leave the unrelated bits of the underlying 32-bit slot unchanged.
func (f *File) Write(r Reg, value uint32) {
	idx := r.Index()
	switch r.class() {
	case sizeD:
		f.d[idx] = value
	case sizeW:
		f.d[idx] = (f.d[idx] &^ 0xFFFF) | (value & 0xFFFF)
	case sizeH:
		f.d[idx] = (f.d[idx] &^ 0xFF00) | ((value & 0xFF) << 8)
	case sizeL:
		f.d[idx] = (f.d[idx] &^ 0xFF) | (value & 0xFF)
	default:
		panic("cpuregs: unreachable register class")
	}
}

// D0, W0, L0 are the accumulators used by most ALU instruction forms as the
// required destination for 32/16/8-bit results respectively.
var (
	D0 = D(0)
	W0 = W(0)
	L0 = L(0)
)
