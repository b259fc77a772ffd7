package codegen

import (
	"strings"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/obj"
)

// runPass1 walks the node list once, assigning every label the address its
// next byte will occupy and advancing the live location counter by each
// instruction's/directive's size, exactly as pass 2 will later emit it.
// Section creation happens here too, since it only depends on addresses.
func runPass1(s *State, nodes []asmast.Node) error {
	for _, n := range nodes {
		switch n.Kind {
		case asmast.NodeLabel:
			if err := s.defineLabel(n.Label.Name, n.Pos); err != nil {
				return err
			}

		case asmast.NodeInstruction:
			if s.inRAM() {
				return diag.At(n.Pos, ErrInstructionsNotAllowedInRam, "%s", n.Instruction.Mnemonic)
			}
			l, err := instructionLayout(s, n.Instruction, n.Pos)
			if err != nil {
				return err
			}
			s.ensureSectionOpenAt(s.liveLC())
			s.advanceLC(l.size())

		case asmast.NodeDirective:
			if err := s.pass1Directive(n.Directive, n.Pos); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *State) defineLabel(name string, pos diag.Position) error {
	if _, exists := s.labels[name]; exists {
		return diag.At(pos, ErrLabelRedefinition, "%q", name)
	}
	sec := s.currentSection
	if sec < 0 {
		sec = s.ensureSectionOpenAt(s.liveLC())
	}
	s.labels[name] = labelEntry{sectionIndex: sec, address: s.liveLC()}
	return nil
}

// ensureSectionOpenAt reuses the current section if it is already open and
// contiguous at addr, or opens (or reopens an existing empty) section
// starting at addr otherwise. Returns the section's index.
func (s *State) ensureSectionOpenAt(addr uint32) int {
	if s.currentSection >= 0 {
		sec := &s.Object.Sections[s.currentSection]
		contiguous := sec.VirtualAddress+sec.Size() == addr
		sameRegion := s.sectionInRAM(s.currentSection) == s.inRAM()
		if contiguous && sameRegion {
			return s.currentSection
		}
	}

	for i := range s.Object.Sections {
		sec := &s.Object.Sections[i]
		if sec.VirtualAddress == addr && sec.Size() == 0 && s.sectionInRAM(i) == s.inRAM() {
			s.currentSection = i
			return i
		}
	}

	name := ".text"
	secType := obj.SectionCode
	flags := obj.SectionAlloc | obj.SectionLoad | obj.SectionExec
	if s.inRAM() {
		name = ".bss"
		secType = obj.SectionBss
		flags = obj.SectionAlloc | obj.SectionWrite
	}
	idx, _ := s.Object.AddSection(obj.Section{
		Name:           name,
		VirtualAddress: addr,
		Type:           secType,
		Flags:          flags,
	})
	s.currentSection = idx
	return idx
}

func (s *State) sectionInRAM(idx int) bool {
	return s.Object.Sections[idx].VirtualAddress >= ramCeiling
}

func (s *State) pass1Directive(d *asmast.DirectiveNode, pos diag.Position) error {
	switch strings.ToLower(d.Name) {
	case "org":
		addr, err := s.evalDirectiveAddr(d, pos)
		if err != nil {
			return err
		}
		s.setLiveLC(addr)
		s.ensureSectionOpenAt(addr)

	case "rom":
		s.region = regionROM
		s.ensureSectionOpenAt(s.romLC)

	case "ram":
		s.region = regionRAM
		s.ensureSectionOpenAt(s.ramLC)

	case "int":
		addr, err := s.evalIntVector(d, pos)
		if err != nil {
			return err
		}
		s.region = regionROM
		s.romLC = addr
		s.ensureSectionOpenAt(addr)

	case "global":
		for _, arg := range d.Args {
			if s.externs[arg.Lexeme] {
				return diag.At(pos, ErrGlobalExternConflict, "%q", arg.Lexeme)
			}
			s.globals[arg.Lexeme] = true
		}

	case "extern":
		for _, arg := range d.Args {
			if s.globals[arg.Lexeme] {
				return diag.At(pos, ErrGlobalExternConflict, "%q", arg.Lexeme)
			}
			s.externs[arg.Lexeme] = true
		}

	case "byte":
		s.ensureSectionOpenAt(s.liveLC())
		s.advanceLC(uint32(countDirectiveItems(d)))

	case "word":
		s.ensureSectionOpenAt(s.liveLC())
		s.advanceLC(uint32(countDirectiveItems(d)) * 2)

	case "dword":
		s.ensureSectionOpenAt(s.liveLC())
		s.advanceLC(uint32(countDirectiveItems(d)) * 4)

	case "let", "const":
		// Already handled by Pass 0.

	default:
		return diag.At(pos, ErrUnknownDirective, "%q", d.Name)
	}
	return nil
}

func (s *State) evalDirectiveAddr(d *asmast.DirectiveNode, pos diag.Position) (uint32, error) {
	if len(d.Args) == 0 {
		return 0, diag.At(pos, ErrMalformedDirective, ".%s requires an address expression", d.Name)
	}
	v, err := s.eval.Eval(d.Args)
	if err != nil {
		return 0, diag.At(pos, err, ".%s", d.Name)
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, diag.At(pos, err, ".%s", d.Name)
	}
	return uint32(n), nil
}

func (s *State) evalIntVector(d *asmast.DirectiveNode, pos diag.Position) (uint32, error) {
	if len(d.Args) == 0 {
		return 0, diag.At(pos, ErrMalformedDirective, ".int requires a vector expression")
	}
	v, err := s.eval.Eval(d.Args)
	if err != nil {
		return 0, diag.At(pos, err, ".int")
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, diag.At(pos, err, ".int")
	}
	if n < 0 || n > 31 {
		return 0, diag.At(pos, ErrVectorOutOfRange, "%d", n)
	}
	return ivtBase + uint32(n)*ivtSlotSize, nil
}

// countDirectiveItems counts the comma-separated expressions in a
// `.byte`/`.word`/`.dword` directive's argument list; each item may itself
// be a multi-token expression, so items are split on top-level commas.
func countDirectiveItems(d *asmast.DirectiveNode) int {
	if len(d.Args) == 0 {
		return 0
	}
	count := 1
	for _, t := range d.Args {
		if t.Lexeme == "," {
			count++
		}
	}
	return count
}
