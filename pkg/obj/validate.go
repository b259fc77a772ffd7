package obj

import "fmt"

const romCeiling uint32 = 0x80000000

// Validate checks all invariants from spec §3 that must hold at save time
// (and are re-checked on load): region/type consistency, section
// non-overlap, symbol scoping, and relocation bounds/targets.
func (o *Object) Validate() error {
	if err := o.validateRegions(); err != nil {
		return err
	}
	if err := o.validateOverlap(); err != nil {
		return err
	}
	if err := o.validateSymbols(); err != nil {
		return err
	}
	if err := o.validateRelocations(); err != nil {
		return err
	}
	return nil
}

func (o *Object) validateRegions() error {
	for i := range o.Sections {
		s := &o.Sections[i]
		end := s.VirtualAddress + s.Size()

		switch s.Type {
		case SectionCode, SectionData:
			if s.VirtualAddress >= romCeiling || end > romCeiling {
				return fmt.Errorf("%w: section %q (type %v) at 0x%08X..0x%08X is not entirely in ROM", ErrRegionTypeMismatch, s.Name, s.Type, s.VirtualAddress, end)
			}
		case SectionBss:
			if s.VirtualAddress < romCeiling {
				return fmt.Errorf("%w: section %q (type %v) at 0x%08X..0x%08X is not entirely in RAM", ErrRegionTypeMismatch, s.Name, s.Type, s.VirtualAddress, end)
			}
		case SectionNull:
			// unconstrained
		}
	}
	return nil
}

func (o *Object) validateOverlap() error {
	for i := range o.Sections {
		a := &o.Sections[i]
		if a.Size() == 0 {
			continue
		}
		aEnd := a.VirtualAddress + a.Size()

		for j := i + 1; j < len(o.Sections); j++ {
			b := &o.Sections[j]
			if b.Size() == 0 {
				continue
			}
			bEnd := b.VirtualAddress + b.Size()

			if a.VirtualAddress < bEnd && b.VirtualAddress < aEnd {
				return fmt.Errorf("%w: %q (0x%08X..0x%08X) and %q (0x%08X..0x%08X)", ErrSectionOverlap, a.Name, a.VirtualAddress, aEnd, b.Name, b.VirtualAddress, bEnd)
			}
		}
	}
	return nil
}

func (o *Object) validateSymbols() error {
	seenGlobal := map[string]bool{}

	for _, sym := range o.Symbols {
		switch sym.Binding {
		case BindingGlobal:
			if seenGlobal[sym.Name] {
				return fmt.Errorf("%w: %q", ErrGlobalAlreadyDefined, sym.Name)
			}
			seenGlobal[sym.Name] = true

			if sym.SectionIndex == SectionUndef {
				return fmt.Errorf("%w: global %q is undefined", ErrInvalidSymbolScoping, sym.Name)
			}
		case BindingExtern:
			if sym.SectionIndex != SectionUndef || sym.Value != 0 {
				return fmt.Errorf("%w: extern %q must have section=UNDEF and value=0", ErrInvalidSymbolScoping, sym.Name)
			}
		}

		if sym.SectionIndex != SectionUndef && sym.SectionIndex != SectionAbs && sym.SectionIndex != SectionCommon {
			if sym.SectionIndex >= uint32(len(o.Sections)) {
				return fmt.Errorf("%w: symbol %q references section %d", ErrInvalidSectionIndex, sym.Name, sym.SectionIndex)
			}
		}
	}
	return nil
}

func (o *Object) validateRelocations() error {
	for _, rel := range o.Relocations {
		if rel.SymbolIndex >= uint32(len(o.Symbols)) {
			return fmt.Errorf("%w: symbol index %d", ErrDanglingRelocation, rel.SymbolIndex)
		}
		if rel.SectionIndex >= uint32(len(o.Sections)) {
			return fmt.Errorf("%w: section index %d", ErrInvalidSectionIndex, rel.SectionIndex)
		}

		section := &o.Sections[rel.SectionIndex]
		if rel.Offset+rel.Kind.Size() > section.Size() {
			return fmt.Errorf("%w: offset %d + width %d into section %q of size %d", ErrRelocationOutOfBounds, rel.Offset, rel.Kind.Size(), section.Name, section.Size())
		}
	}
	return nil
}
