package obj

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

const (
	sectionHeaderSize   = 16
	symbolEntrySize     = 16
	relocationEntrySize = 16
)

// stringTable accumulates a deduplicated, NUL-terminated name table. Offset
// 0 is reserved for the empty string, per spec §4.1.
type stringTable struct {
	buf     []byte
	offsets map[string]uint32
}

func newStringTable() *stringTable {
	return &stringTable{buf: []byte{0}, offsets: map[string]uint32{"": 0}}
}

func (st *stringTable) intern(name string) uint32 {
	if off, ok := st.offsets[name]; ok {
		return off
	}
	off := uint32(len(st.buf))
	st.buf = append(st.buf, []byte(name)...)
	st.buf = append(st.buf, 0)
	st.offsets[name] = off
	return off
}

func readCString(table []byte, offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if int(offset) >= len(table) {
		return "", fmt.Errorf("%w: string offset %d beyond table of size %d", ErrTruncatedTable, offset, len(table))
	}
	end := int(offset)
	for end < len(table) && table[end] != 0 {
		end++
	}
	if end >= len(table) {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrTruncatedTable, offset)
	}
	return string(table[offset:end]), nil
}

// Encode serializes the object into the byte-exact binary layout described
// by spec §4.1:
//
//	[header | section-headers | section-data(LOAD only) | symbols | strings | relocations]
func (o *Object) Encode() ([]byte, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	st := newStringTable()
	for _, s := range o.Sections {
		st.intern(s.Name)
	}
	for _, sym := range o.Symbols {
		st.intern(sym.Name)
	}

	sectionHeadersOffset := uint32(headerSize)
	sectionDataOffset := sectionHeadersOffset + uint32(len(o.Sections))*sectionHeaderSize

	dataOffsets := make([]uint32, len(o.Sections))
	cursor := sectionDataOffset
	var sectionDataBlob []byte
	for i, s := range o.Sections {
		if !s.Flags.Has(SectionLoad) || len(s.Data) == 0 {
			dataOffsets[i] = 0
			continue
		}
		dataOffsets[i] = cursor
		sectionDataBlob = append(sectionDataBlob, s.Data...)
		cursor += uint32(len(s.Data))
	}

	symbolTableOffset := uint32(0)
	if len(o.Symbols) > 0 {
		symbolTableOffset = cursor
		cursor += uint32(len(o.Symbols)) * symbolEntrySize
	}

	stringTableOffset := cursor
	cursor += uint32(len(st.buf))

	relocTableOffset := cursor
	cursor += uint32(len(o.Relocations)) * relocationEntrySize

	buf := make([]byte, cursor)

	binary.LittleEndian.PutUint32(buf[0x00:], ObjectMagic)
	binary.LittleEndian.PutUint32(buf[0x04:], uint32(CurrentMajorVersion)<<24)
	binary.LittleEndian.PutUint32(buf[0x08:], uint32(o.Flags))
	binary.LittleEndian.PutUint32(buf[0x0C:], uint32(len(o.Sections)))
	binary.LittleEndian.PutUint32(buf[0x10:], symbolTableOffset)
	binary.LittleEndian.PutUint32(buf[0x14:], uint32(len(o.Symbols)))
	binary.LittleEndian.PutUint32(buf[0x18:], stringTableOffset)
	binary.LittleEndian.PutUint32(buf[0x1C:], uint32(len(st.buf)))
	binary.LittleEndian.PutUint32(buf[0x20:], relocTableOffset)
	binary.LittleEndian.PutUint32(buf[0x24:], uint32(len(o.Relocations)))

	for i, s := range o.Sections {
		rec := buf[sectionHeadersOffset+uint32(i)*sectionHeaderSize:]
		binary.LittleEndian.PutUint32(rec[0:], st.intern(s.Name))
		binary.LittleEndian.PutUint32(rec[4:], s.VirtualAddress)
		binary.LittleEndian.PutUint32(rec[8:], s.Size())
		binary.LittleEndian.PutUint16(rec[12:], uint16(s.Type))
		binary.LittleEndian.PutUint16(rec[14:], uint16(s.Flags))
	}

	copy(buf[sectionDataOffset:], sectionDataBlob)

	for i, sym := range o.Symbols {
		rec := buf[symbolTableOffset+uint32(i)*symbolEntrySize:]
		binary.LittleEndian.PutUint32(rec[0:], st.intern(sym.Name))
		binary.LittleEndian.PutUint32(rec[4:], sym.Value)
		binary.LittleEndian.PutUint32(rec[8:], sym.SectionIndex)
		rec[12] = uint8(sym.Type)
		rec[13] = uint8(sym.Binding)
		binary.LittleEndian.PutUint16(rec[14:], sym.Flags)
	}

	copy(buf[stringTableOffset:], st.buf)

	for i, rel := range o.Relocations {
		rec := buf[relocTableOffset+uint32(i)*relocationEntrySize:]
		binary.LittleEndian.PutUint32(rec[0:], rel.Offset)
		binary.LittleEndian.PutUint32(rec[4:], rel.SymbolIndex)
		binary.LittleEndian.PutUint32(rec[8:], rel.SectionIndex)
		binary.LittleEndian.PutUint16(rec[12:], uint16(rel.Kind))
		binary.LittleEndian.PutUint16(rec[14:], uint16(rel.Addend))
	}

	return buf, nil
}

// Decode parses an Object from its binary representation, validating the
// header, then the section/symbol/string/relocation tables in that order,
// per spec §4.1. It runs the full validation pass before returning success.
func Decode(data []byte) (*Object, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: file smaller than header (%d bytes)", ErrTruncatedTable, len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0x00:])
	if magic != ObjectMagic {
		return nil, fmt.Errorf("%w: got 0x%08X, want 0x%08X", ErrBadMagic, magic, ObjectMagic)
	}

	version := binary.LittleEndian.Uint32(data[0x04:])
	major := uint8(version >> 24)
	if major != CurrentMajorVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedMajorVer, major, CurrentMajorVersion)
	}

	flags := Flags(binary.LittleEndian.Uint32(data[0x08:]))
	sectionCount := binary.LittleEndian.Uint32(data[0x0C:])
	symbolTableOffset := binary.LittleEndian.Uint32(data[0x10:])
	symbolCount := binary.LittleEndian.Uint32(data[0x14:])
	stringTableOffset := binary.LittleEndian.Uint32(data[0x18:])
	stringTableSize := binary.LittleEndian.Uint32(data[0x1C:])
	relocTableOffset := binary.LittleEndian.Uint32(data[0x20:])
	relocCount := binary.LittleEndian.Uint32(data[0x24:])

	if err := boundsCheck(len(data), uint32(headerSize), sectionCount*sectionHeaderSize); err != nil {
		return nil, err
	}
	if err := boundsCheck(len(data), stringTableOffset, stringTableSize); err != nil {
		return nil, err
	}
	if symbolCount > 0 {
		if err := boundsCheck(len(data), symbolTableOffset, symbolCount*symbolEntrySize); err != nil {
			return nil, err
		}
	}
	if relocCount > 0 {
		if err := boundsCheck(len(data), relocTableOffset, relocCount*relocationEntrySize); err != nil {
			return nil, err
		}
	}

	strings := data[stringTableOffset : stringTableOffset+stringTableSize]

	o := &Object{Flags: flags}

	sectionHeadersOffset := uint32(headerSize)
	o.Sections = make([]Section, sectionCount)
	dataOffsets := make([]uint32, sectionCount)
	cursor := sectionHeadersOffset + sectionCount*sectionHeaderSize
	for i := uint32(0); i < sectionCount; i++ {
		rec := data[sectionHeadersOffset+i*sectionHeaderSize:]
		nameOff := binary.LittleEndian.Uint32(rec[0:])
		name, err := readCString(strings, nameOff)
		if err != nil {
			return nil, err
		}

		size := binary.LittleEndian.Uint32(rec[8:])
		secType := SectionType(binary.LittleEndian.Uint16(rec[12:]))
		secFlags := SectionFlags(binary.LittleEndian.Uint16(rec[14:]))

		sec := Section{
			Name:           name,
			VirtualAddress: binary.LittleEndian.Uint32(rec[4:]),
			Type:           secType,
			Flags:          secFlags,
		}

		if secType == SectionBss {
			sec.ReservedSize = size
		} else if secFlags.Has(SectionLoad) && size > 0 {
			dataOffsets[i] = cursor
			if err := boundsCheck(len(data), cursor, size); err != nil {
				return nil, err
			}
			sec.Data = append([]byte(nil), data[cursor:cursor+size]...)
			cursor += size
		}

		o.Sections[i] = sec
	}

	if symbolCount > 0 {
		o.Symbols = make([]Symbol, symbolCount)
	}
	for i := uint32(0); i < symbolCount; i++ {
		rec := data[symbolTableOffset+i*symbolEntrySize:]
		nameOff := binary.LittleEndian.Uint32(rec[0:])
		name, err := readCString(strings, nameOff)
		if err != nil {
			return nil, err
		}

		o.Symbols[i] = Symbol{
			Name:         name,
			Value:        binary.LittleEndian.Uint32(rec[4:]),
			SectionIndex: binary.LittleEndian.Uint32(rec[8:]),
			Type:         SymbolType(rec[12]),
			Binding:      Binding(rec[13]),
			Flags:        binary.LittleEndian.Uint16(rec[14:]),
		}
	}

	if relocCount > 0 {
		o.Relocations = make([]Relocation, relocCount)
	}
	for i := uint32(0); i < relocCount; i++ {
		rec := data[relocTableOffset+i*relocationEntrySize:]
		o.Relocations[i] = Relocation{
			Offset:       binary.LittleEndian.Uint32(rec[0:]),
			SymbolIndex:  binary.LittleEndian.Uint32(rec[4:]),
			SectionIndex: binary.LittleEndian.Uint32(rec[8:]),
			Kind:         RelocKind(binary.LittleEndian.Uint16(rec[12:])),
			Addend:       int16(binary.LittleEndian.Uint16(rec[14:])),
		}
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	return o, nil
}

func boundsCheck(dataLen int, offset uint32, size uint32) error {
	if uint64(offset)+uint64(size) > uint64(dataLen) {
		return fmt.Errorf("%w: range [%d, %d) exceeds file size %d", ErrTruncatedTable, offset, uint64(offset)+uint64(size), dataLen)
	}
	return nil
}

// Load reads and decodes an Object from the file at path. On failure it
// leaves no partial state: the returned Object is nil.
func Load(path string) (*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", ErrIO, path, err)
	}

	o, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// Save encodes the object and writes it atomically to path (via a temp file
// in the same directory, renamed into place).
func (o *Object) Save(path string) error {
	data, err := o.Encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".obj-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %q: %v", ErrIO, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %q: %v", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing %q: %v", ErrIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming into %q: %v", ErrIO, path, err)
	}

	return nil
}
