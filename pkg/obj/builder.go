package obj

import "fmt"

// AddSection appends a new section and returns its index.
func (o *Object) AddSection(sec Section) (int, error) {
	o.Sections = append(o.Sections, sec)
	return len(o.Sections) - 1, nil
}

// AddSymbol appends a new symbol, enforcing the scoping rules from spec §4.1:
// a global binding cannot be redefined once it already exists as global, an
// extern name cannot later be redefined as a local or global definition, and
// local symbols may be shadowed freely by later locals of the same name.
func (o *Object) AddSymbol(sym Symbol) (int, error) {
	for _, existing := range o.Symbols {
		if existing.Name != sym.Name {
			continue
		}

		if existing.Binding == BindingExtern && sym.Binding != BindingExtern {
			return -1, fmt.Errorf("%w: %q is already declared extern", ErrExternRedefinedLocal, sym.Name)
		}

		if sym.Binding == BindingGlobal && existing.Binding == BindingGlobal {
			return -1, fmt.Errorf("%w: %q", ErrGlobalAlreadyDefined, sym.Name)
		}
	}

	o.Symbols = append(o.Symbols, sym)
	return len(o.Symbols) - 1, nil
}

// AddRelocation appends a new relocation, enforcing that both the symbol and
// section indices are in range and that the relocation's offset falls
// strictly inside the target section's bytes.
func (o *Object) AddRelocation(rel Relocation) (int, error) {
	if rel.SectionIndex >= uint32(len(o.Sections)) {
		return -1, fmt.Errorf("%w: section index %d", ErrInvalidSectionIndex, rel.SectionIndex)
	}
	if rel.SymbolIndex >= uint32(len(o.Symbols)) {
		return -1, fmt.Errorf("%w: symbol index %d", ErrDanglingRelocation, rel.SymbolIndex)
	}

	section := &o.Sections[rel.SectionIndex]
	if rel.Offset >= section.Size() {
		return -1, fmt.Errorf("%w: offset %d into section %q of size %d", ErrRelocationOutOfBounds, rel.Offset, section.Name, section.Size())
	}

	o.Relocations = append(o.Relocations, rel)
	return len(o.Relocations) - 1, nil
}
