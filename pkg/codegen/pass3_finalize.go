package codegen

import "github.com/dgdev1024/g10/pkg/obj"

// runPass3 sets the object-wide header flags spec.md §4.1 derives from the
// finished section/symbol/relocation tables, then runs the container's own
// structural validation (section overlap, BSS/code region placement, ...).
func runPass3(s *State) error {
	s.Object.Flags |= obj.FlagRelocatable
	if len(s.Object.Relocations) > 0 {
		s.Object.Flags |= obj.FlagHasReloc
	}
	for _, name := range []string{"_start", "start", "main", "_main"} {
		if idx, ok := s.Object.FindSymbol(name); ok && s.Object.Symbols[idx].SectionIndex != obj.SectionUndef {
			s.Object.Flags |= obj.FlagHasEntry
			break
		}
	}
	return s.Object.Validate()
}
