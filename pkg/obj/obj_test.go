package obj_test

import (
	"testing"

	"github.com/dgdev1024/g10/pkg/obj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallestValidObject() *obj.Object {
	o := obj.New()
	o.AddSection(obj.Section{
		Name:           ".text",
		VirtualAddress: 0x2000,
		Data:           []byte{0x00, 0x00, 0x02, 0x00},
		Type:           obj.SectionCode,
		Flags:          obj.SectionAlloc | obj.SectionLoad | obj.SectionExec,
	})
	return o
}

func TestLoadSaveRoundTrip(t *testing.T) {
	o := smallestValidObject()

	data, err := o.Encode()
	require.NoError(t, err)

	decoded, err := obj.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, o.Sections, decoded.Sections)
	assert.Equal(t, o.Symbols, decoded.Symbols)
	assert.Equal(t, o.Relocations, decoded.Relocations)
	assert.Equal(t, o.Flags, decoded.Flags)
}

func TestLoadSaveRoundTripWithSymbolsAndRelocations(t *testing.T) {
	o := obj.New()
	_, err := o.AddSection(obj.Section{
		Name:           ".text",
		VirtualAddress: 0x2000,
		Data:           []byte{0x43, 0x00, 0x00, 0x00, 0x00, 0x00},
		Type:           obj.SectionCode,
		Flags:          obj.SectionAlloc | obj.SectionLoad | obj.SectionExec,
	})
	require.NoError(t, err)

	symIdx, err := o.AddSymbol(obj.Symbol{
		Name:         "foo",
		SectionIndex: obj.SectionUndef,
		Binding:      obj.BindingExtern,
	})
	require.NoError(t, err)

	_, err = o.AddRelocation(obj.Relocation{
		Offset:       2,
		SymbolIndex:  uint32(symIdx),
		SectionIndex: 0,
		Kind:         obj.RelocAbs32,
	})
	require.NoError(t, err)

	data, err := o.Encode()
	require.NoError(t, err)

	decoded, err := obj.Decode(data)
	require.NoError(t, err)

	require.Len(t, decoded.Symbols, 1)
	assert.Equal(t, "foo", decoded.Symbols[0].Name)
	assert.Equal(t, obj.BindingExtern, decoded.Symbols[0].Binding)
	require.Len(t, decoded.Relocations, 1)
	assert.Equal(t, obj.RelocAbs32, decoded.Relocations[0].Kind)
	assert.EqualValues(t, 2, decoded.Relocations[0].Offset)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	o := smallestValidObject()
	data, err := o.Encode()
	require.NoError(t, err)

	data[0] ^= 0xFF

	_, err = obj.Decode(data)
	assert.ErrorIs(t, err, obj.ErrBadMagic)
}

func TestDecodeRejectsTruncatedFile(t *testing.T) {
	o := smallestValidObject()
	data, err := o.Encode()
	require.NoError(t, err)

	_, err = obj.Decode(data[:len(data)-2])
	assert.ErrorIs(t, err, obj.ErrTruncatedTable)
}

func TestValidateRejectsOverlappingSections(t *testing.T) {
	o := obj.New()
	o.AddSection(obj.Section{
		Name: "a", VirtualAddress: 0x2000, Data: []byte{1, 2, 3, 4},
		Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec,
	})
	o.AddSection(obj.Section{
		Name: "b", VirtualAddress: 0x2002, Data: []byte{5, 6, 7, 8},
		Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec,
	})

	err := o.Validate()
	assert.ErrorIs(t, err, obj.ErrSectionOverlap)
}

func TestValidateRejectsCodeSectionInRAM(t *testing.T) {
	o := obj.New()
	o.AddSection(obj.Section{
		Name: ".text", VirtualAddress: 0x80000000, Data: []byte{0, 0},
		Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec,
	})

	err := o.Validate()
	assert.ErrorIs(t, err, obj.ErrRegionTypeMismatch)
}

func TestValidateRejectsBssSectionInROM(t *testing.T) {
	o := obj.New()
	o.AddSection(obj.Section{
		Name: ".bss", VirtualAddress: 0x2000, ReservedSize: 16,
		Type: obj.SectionBss, Flags: obj.SectionAlloc | obj.SectionWrite,
	})

	err := o.Validate()
	assert.ErrorIs(t, err, obj.ErrRegionTypeMismatch)
}

func TestAddSymbolRejectsGlobalRedefinition(t *testing.T) {
	o := obj.New()
	o.AddSection(obj.Section{Name: ".text", VirtualAddress: 0x2000, Data: []byte{0, 0}, Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec})

	_, err := o.AddSymbol(obj.Symbol{Name: "main", SectionIndex: 0, Binding: obj.BindingGlobal})
	require.NoError(t, err)

	_, err = o.AddSymbol(obj.Symbol{Name: "main", SectionIndex: 0, Binding: obj.BindingGlobal})
	assert.ErrorIs(t, err, obj.ErrGlobalAlreadyDefined)
}

func TestAddSymbolRejectsExternRedefinedAsLocal(t *testing.T) {
	o := obj.New()
	o.AddSection(obj.Section{Name: ".text", VirtualAddress: 0x2000, Data: []byte{0, 0}, Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec})

	_, err := o.AddSymbol(obj.Symbol{Name: "foo", SectionIndex: obj.SectionUndef, Binding: obj.BindingExtern})
	require.NoError(t, err)

	_, err = o.AddSymbol(obj.Symbol{Name: "foo", SectionIndex: 0, Binding: obj.BindingLocal})
	assert.ErrorIs(t, err, obj.ErrExternRedefinedLocal)
}

func TestAddSymbolAllowsLocalShadowing(t *testing.T) {
	o := obj.New()
	o.AddSection(obj.Section{Name: ".text", VirtualAddress: 0x2000, Data: []byte{0, 0}, Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec})

	_, err := o.AddSymbol(obj.Symbol{Name: ".L1", SectionIndex: 0, Binding: obj.BindingLocal})
	require.NoError(t, err)
	_, err = o.AddSymbol(obj.Symbol{Name: ".L1", SectionIndex: 0, Value: 4, Binding: obj.BindingLocal})
	assert.NoError(t, err)
}

func TestAddRelocationRejectsOffsetOutOfBounds(t *testing.T) {
	o := obj.New()
	o.AddSection(obj.Section{Name: ".text", VirtualAddress: 0x2000, Data: []byte{0, 0}, Type: obj.SectionCode, Flags: obj.SectionAlloc | obj.SectionLoad | obj.SectionExec})
	_, err := o.AddSymbol(obj.Symbol{Name: "foo", SectionIndex: obj.SectionUndef, Binding: obj.BindingExtern})
	require.NoError(t, err)

	_, err = o.AddRelocation(obj.Relocation{Offset: 10, SymbolIndex: 0, SectionIndex: 0, Kind: obj.RelocAbs8})
	assert.ErrorIs(t, err, obj.ErrRelocationOutOfBounds)
}
