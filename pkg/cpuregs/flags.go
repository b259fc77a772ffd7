package cpuregs

import "github.com/dgdev1024/g10/internal/bitutil"

// Flags is the CPU's one-byte condition code register. Bits 0-2 are
// reserved and always zero; bits 3-7 hold V, C, H, N, Z per spec §4.2.
type Flags uint8

const (
	bitV = 3
	bitC = 4
	bitH = 5
	bitN = 6
	bitZ = 7
)

func (f *Flags) view() bitutil.View[uint8] {
	return bitutil.NewView((*uint8)(f))
}

func (f Flags) Z() bool { return (&f).view().ReadBit(bitZ) != 0 }
func (f Flags) N() bool { return (&f).view().ReadBit(bitN) != 0 }
func (f Flags) H() bool { return (&f).view().ReadBit(bitH) != 0 }
func (f Flags) C() bool { return (&f).view().ReadBit(bitC) != 0 }
func (f Flags) V() bool { return (&f).view().ReadBit(bitV) != 0 }

func (f *Flags) SetZ(v bool) { f.view().WriteBit(bitZ, v) }
func (f *Flags) SetN(v bool) { f.view().WriteBit(bitN, v) }
func (f *Flags) SetH(v bool) { f.view().WriteBit(bitH, v) }
func (f *Flags) SetC(v bool) { f.view().WriteBit(bitC, v) }
func (f *Flags) SetV(v bool) { f.view().WriteBit(bitV, v) }

// AsByte returns the flags register's raw byte representation, with the
// reserved low 3 bits forced to zero.
func (f Flags) AsByte() uint8 {
	return uint8(f) & 0xF8
}

// FromByte loads flags from a raw byte, masking off the reserved bits.
func FromByte(b uint8) Flags {
	return Flags(b & 0xF8)
}

func (f Flags) String() string {
	bit := func(set bool, ch byte) byte {
		if set {
			return ch
		}
		return '-'
	}
	return string([]byte{
		bit(f.Z(), 'Z'),
		bit(f.N(), 'N'),
		bit(f.H(), 'H'),
		bit(f.C(), 'C'),
		bit(f.V(), 'V'),
	})
}
