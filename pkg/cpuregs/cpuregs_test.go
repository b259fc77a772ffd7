package cpuregs_test

import (
	"testing"

	"github.com/dgdev1024/g10/pkg/cpuregs"
	"github.com/stretchr/testify/assert"
)

func TestOverlappingRegisterViews(t *testing.T) {
	var f cpuregs.File

	f.Write(cpuregs.D(3), 0x12345678)
	assert.EqualValues(t, 0x5678, f.Read(cpuregs.W(3)))
	assert.EqualValues(t, 0x56, f.Read(cpuregs.H(3)))
	assert.EqualValues(t, 0x78, f.Read(cpuregs.L(3)))

	f.Write(cpuregs.L(3), 0xFF)
	assert.EqualValues(t, 0x123456FF, f.Read(cpuregs.D(3)))

	f.Write(cpuregs.H(3), 0xAA)
	assert.EqualValues(t, 0x1234AAFF, f.Read(cpuregs.D(3)))

	f.Write(cpuregs.W(3), 0x0001)
	assert.EqualValues(t, 0x12340001, f.Read(cpuregs.D(3)))
}

func TestAccumulators(t *testing.T) {
	assert.True(t, cpuregs.D0.IsAccumulator())
	assert.True(t, cpuregs.W0.IsAccumulator())
	assert.True(t, cpuregs.L0.IsAccumulator())
	assert.False(t, cpuregs.D(1).IsAccumulator())
}

func TestFlagsRoundTrip(t *testing.T) {
	var f cpuregs.Flags
	f.SetZ(true)
	f.SetC(true)

	assert.True(t, f.Z())
	assert.True(t, f.C())
	assert.False(t, f.N())
	assert.False(t, f.H())
	assert.False(t, f.V())
	assert.EqualValues(t, 0, uint8(f.AsByte())&0x07, "reserved bits must stay zero")

	f2 := cpuregs.FromByte(f.AsByte())
	assert.Equal(t, f.AsByte(), f2.AsByte())
}

func TestAdd8OverflowIntoZero(t *testing.T) {
	// S5: LD L0, $FF; ADD L0, $01 leaves L0=0x00, Z=1, N=0, H=1, C=1, V=0.
	result, flags := cpuregs.Add8(0xFF, 0x01)

	assert.EqualValues(t, 0x00, result)
	assert.True(t, flags.Z())
	assert.False(t, flags.N())
	assert.True(t, flags.H())
	assert.True(t, flags.C())
	assert.False(t, flags.V())
}

func TestAdd8FlagProperties(t *testing.T) {
	for a := 0; a < 256; a += 17 {
		for b := 0; b < 256; b += 23 {
			result, flags := cpuregs.Add8(uint8(a), uint8(b))

			assert.EqualValues(t, (a+b)%256, result)
			assert.Equal(t, a+b >= 256, flags.C())

			aSign := a >= 128
			bSign := b >= 128
			rSign := result >= 128
			wantOverflow := aSign == bSign && rSign != aSign
			assert.Equal(t, wantOverflow, flags.V())
		}
	}
}

func TestIncDecOverflowBoundaries(t *testing.T) {
	var zero cpuregs.Flags
	_, incFlags := cpuregs.Inc8(0x7F, zero)
	assert.True(t, incFlags.V())

	_, decFlags := cpuregs.Dec8(0x80, zero)
	assert.True(t, decFlags.V())
}

func TestIncPreservesCarry(t *testing.T) {
	var withCarry cpuregs.Flags
	withCarry.SetC(true)

	_, incFlags := cpuregs.Inc8(0x00, withCarry)
	assert.True(t, incFlags.C())
}

func TestCmpDiscardsResultButSetsFlags(t *testing.T) {
	flags := cpuregs.Cmp8(0x05, 0x05)
	assert.True(t, flags.Z())
}

func TestRlRotatesThroughCarry(t *testing.T) {
	var prev cpuregs.Flags
	prev.SetC(true)

	result, flags := cpuregs.Rl8(0x80, prev)
	assert.EqualValues(t, 0x01, result)
	assert.True(t, flags.C())
}

func TestBitTestComplement(t *testing.T) {
	var prev cpuregs.Flags
	flags := cpuregs.BitTest(0b0000_0001, 0, prev)
	assert.False(t, flags.Z())

	flags = cpuregs.BitTest(0b0000_0000, 0, prev)
	assert.True(t, flags.Z())
}
