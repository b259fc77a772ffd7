package codegen

import (
	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/obj"
)

// populateSymbolTable runs once Pass 1 has fixed every label's address. It
// adds one Symbol per extern name (value resolved later, by a linker this
// package does not implement) and one per label: global binding for labels
// named in a `.global` directive, local binding for the rest. A `.global`
// name with no matching label definition anywhere in the module is an
// error, since there would be nothing for another object to link against.
func (s *State) populateSymbolTable() error {
	for name := range s.externs {
		if _, err := s.Object.AddSymbol(obj.Symbol{
			Name:         name,
			SectionIndex: obj.SectionUndef,
			Binding:      obj.BindingExtern,
		}); err != nil {
			return diag.At(diag.Position{}, err, "%s", name)
		}
	}

	for name := range s.globals {
		l, ok := s.labels[name]
		if !ok {
			return diag.At(diag.Position{}, ErrGlobalSymbolUndefined, "%q", name)
		}
		if _, err := s.Object.AddSymbol(obj.Symbol{
			Name:         name,
			Value:        l.address,
			SectionIndex: uint32(l.sectionIndex),
			Type:         obj.SymbolTypeLabel,
			Binding:      obj.BindingGlobal,
		}); err != nil {
			return diag.At(diag.Position{}, err, "%s", name)
		}
	}

	for name, l := range s.labels {
		if s.globals[name] {
			continue
		}
		if _, err := s.Object.AddSymbol(obj.Symbol{
			Name:         name,
			Value:        l.address,
			SectionIndex: uint32(l.sectionIndex),
			Type:         obj.SymbolTypeLabel,
			Binding:      obj.BindingLocal,
		}); err != nil {
			return diag.At(diag.Position{}, err, "%s", name)
		}
	}
	return nil
}
