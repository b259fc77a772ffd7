package cmd

import (
	"testing"

	"github.com/dgdev1024/g10/pkg/cpu"
	"github.com/dgdev1024/g10/pkg/cpubus"
	"github.com/dgdev1024/g10/pkg/obj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func haltObject() *obj.Object {
	o := obj.New()
	o.AddSection(obj.Section{
		Name: ".text", VirtualAddress: 0, Data: []byte{0x00, 0x02},
		Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec,
	})
	return o
}

func TestLoadImageRejectsUnresolvedRelocations(t *testing.T) {
	o := haltObject()
	o.AddSymbol(obj.Symbol{Name: "foo", Binding: obj.BindingExtern, SectionIndex: obj.SectionUndef})
	o.AddRelocation(obj.Relocation{Offset: 0, SymbolIndex: 0, SectionIndex: 0, Kind: obj.RelocAbs32})

	_, err := loadImage(o, 0x1000, 0x1000)
	assert.ErrorIs(t, err, ErrUnresolvedRelocations)
}

func TestLoadImageRejectsSectionDataInRAM(t *testing.T) {
	o := obj.New()
	o.AddSection(obj.Section{
		Name: ".data", VirtualAddress: cpubus.ROMBoundary, Data: []byte{0x01},
		Type: obj.SectionData, Flags: obj.SectionAlloc | obj.SectionLoad,
	})

	_, err := loadImage(o, 0x1000, 0x1000)
	assert.Error(t, err)
}

func TestLoadImageLoadsCodeIntoROM(t *testing.T) {
	bus, err := loadImage(haltObject(), 0x1000, 0x1000)
	require.NoError(t, err)
	b, err := bus.Read(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x02), b)
}

func TestRunStopsOnHalt(t *testing.T) {
	bus, err := loadImage(haltObject(), 0x1000, 0x1000)
	require.NoError(t, err)
	c := cpu.New(bus)

	steps, err := run(c, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)
	assert.True(t, c.IsHalted())
	assert.Equal(t, "halted", stopReason(c))
}

func TestRunRespectsMaxSteps(t *testing.T) {
	o := obj.New()
	// An infinite NOP loop: JMP back to address 0 after one NOP.
	o.AddSection(obj.Section{
		Name: ".text", VirtualAddress: 0,
		Data: []byte{0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00},
		Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec,
	})
	bus, err := loadImage(o, 0x1000, 0x1000)
	require.NoError(t, err)
	c := cpu.New(bus)

	steps, err := run(c, 5, false)
	require.NoError(t, err)
	assert.Equal(t, 5, steps)
	assert.False(t, c.IsHalted())
	assert.False(t, c.IsStopped())
}
