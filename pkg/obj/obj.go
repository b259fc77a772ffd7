// Package obj implements the G10 relocatable object file container: the
// in-memory model described by spec §3 ("Object container (persisted)") and
// the byte-exact binary format described by spec §4.1.
package obj

import "fmt"

// ObjectMagic is the fixed magic number identifying a G10 object file, the
// bytes 'G','1','0',0x00 read little-endian.
const ObjectMagic uint32 = 0x00303147

// CurrentMajorVersion is the major version this package writes and the only
// major version it accepts on load.
const CurrentMajorVersion uint8 = 1

// headerSize is the fixed size in bytes of the object file header.
const headerSize = 64

// Flags are object-wide header flags.
type Flags uint32

const (
	FlagRelocatable Flags = 1 << 0
	FlagHasEntry    Flags = 1 << 1
	FlagHasReloc    Flags = 1 << 2
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Sentinel section indices used by Symbol.SectionIndex.
const (
	SectionUndef  uint32 = 0xFFFFFFFF
	SectionAbs    uint32 = 0xFFFFFFFE
	SectionCommon uint32 = 0xFFFFFFFD
)

// SectionType classifies the content of a Section.
type SectionType uint16

const (
	SectionNull SectionType = iota
	SectionCode
	SectionData
	SectionBss
)

func (t SectionType) String() string {
	switch t {
	case SectionNull:
		return "null"
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionBss:
		return "bss"
	default:
		return fmt.Sprintf("section_type(%d)", uint16(t))
	}
}

// SectionFlags are per-section attribute bits.
type SectionFlags uint16

const (
	SectionAlloc SectionFlags = 1 << 0
	SectionLoad  SectionFlags = 1 << 1
	SectionWrite SectionFlags = 1 << 2
	SectionExec  SectionFlags = 1 << 3
)

func (f SectionFlags) Has(bit SectionFlags) bool { return f&bit != 0 }

// Section is a contiguous named region of the address space.
type Section struct {
	Name            string
	VirtualAddress  uint32
	Data            []byte
	Type            SectionType
	Flags           SectionFlags
	// ReservedSize is the byte size of a BSS section, which has no backing
	// Data but must still record how much space it reserves.
	ReservedSize uint32
}

// Size returns the section's size in bytes: len(Data) for sections that
// carry bytes, ReservedSize for BSS sections that don't.
func (s *Section) Size() uint32 {
	if s.Type == SectionBss {
		return s.ReservedSize
	}
	return uint32(len(s.Data))
}

// SymbolType classifies what a Symbol denotes.
type SymbolType uint8

const (
	SymbolTypeNone SymbolType = iota
	SymbolTypeLabel
)

// Binding classifies a Symbol's visibility.
type Binding uint8

const (
	BindingLocal Binding = iota
	BindingGlobal
	BindingExtern
)

func (b Binding) String() string {
	switch b {
	case BindingLocal:
		return "local"
	case BindingGlobal:
		return "global"
	case BindingExtern:
		return "extern"
	default:
		return fmt.Sprintf("binding(%d)", uint8(b))
	}
}

// Symbol is a named value: a label's address, an absolute constant, or an
// external reference awaiting link-time resolution.
type Symbol struct {
	Name         string
	Value        uint32
	SectionIndex uint32
	Type         SymbolType
	Binding      Binding
	Flags        uint16
}

// RelocKind identifies the shape of a fixup a Relocation describes.
type RelocKind uint16

const (
	RelocAbs8 RelocKind = iota
	RelocAbs16
	RelocAbs32
	RelocRel8
	RelocRel16
	RelocRel32
	RelocQuick16
	RelocPort8
)

func (k RelocKind) String() string {
	switch k {
	case RelocAbs8:
		return "abs8"
	case RelocAbs16:
		return "abs16"
	case RelocAbs32:
		return "abs32"
	case RelocRel8:
		return "rel8"
	case RelocRel16:
		return "rel16"
	case RelocRel32:
		return "rel32"
	case RelocQuick16:
		return "quick16"
	case RelocPort8:
		return "port8"
	default:
		return fmt.Sprintf("reloc_kind(%d)", uint16(k))
	}
}

// Size returns the width in bytes of the fixup this relocation kind encodes.
func (k RelocKind) Size() uint32 {
	switch k {
	case RelocAbs8, RelocPort8:
		return 1
	case RelocAbs16, RelocRel16, RelocQuick16:
		return 2
	case RelocAbs32, RelocRel32:
		return 4
	case RelocRel8:
		return 1
	default:
		return 0
	}
}

// Relocation is a link-time fixup: at Offset bytes into the section at
// SectionIndex, patch in the (possibly PC-relative) value of the symbol at
// SymbolIndex, plus Addend.
type Relocation struct {
	Offset       uint32
	SymbolIndex  uint32
	SectionIndex uint32
	Kind         RelocKind
	Addend       int16
}

// Object is the in-memory model of a G10 relocatable object file.
type Object struct {
	Flags       Flags
	Sections    []Section
	Symbols     []Symbol
	Relocations []Relocation
}

// New returns an empty, growable Object ready for incremental construction
// by a code generator.
func New() *Object {
	return &Object{}
}

// FindSection returns the index of the section with the given name, or
// false if none exists.
func (o *Object) FindSection(name string) (int, bool) {
	for i := range o.Sections {
		if o.Sections[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// FindSymbol returns the index of the symbol with the given name, or false
// if none exists.
func (o *Object) FindSymbol(name string) (int, bool) {
	for i := range o.Symbols {
		if o.Symbols[i].Name == name {
			return i, true
		}
	}
	return 0, false
}
