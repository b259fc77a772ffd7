package codegen

import (
	"encoding/binary"
	"strings"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/asmtoken"
	"github.com/dgdev1024/g10/pkg/obj"
)

// runPass2 walks the node list a second time, now with every label address
// known, and emits the actual bytes: opcodes and resolved immediates for
// instructions, raw data for `.byte`/`.word`/`.dword`, and a relocation
// record wherever an immediate names an external symbol instead of a value
// known within this object.
func runPass2(s *State, nodes []asmast.Node) error {
	for _, n := range nodes {
		switch n.Kind {
		case asmast.NodeLabel:
			// Addresses were fixed in Pass 1; nothing to emit.

		case asmast.NodeInstruction:
			if err := s.emitInstruction(n.Instruction, n.Pos); err != nil {
				return err
			}

		case asmast.NodeDirective:
			if err := s.pass2Directive(n.Directive, n.Pos); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *State) currentSectionPtr() *obj.Section {
	return &s.Object.Sections[s.currentSection]
}

func (s *State) appendBytes(b []byte) {
	s.ensureSectionOpenAt(s.liveLC())
	sec := s.currentSectionPtr()
	if sec.Type == obj.SectionBss {
		sec.ReservedSize += uint32(len(b))
	} else {
		sec.Data = append(sec.Data, b...)
	}
	s.advanceLC(uint32(len(b)))
}

func (s *State) emitInstruction(node *asmast.InstructionNode, pos diag.Position) error {
	l, err := instructionLayout(s, node, pos)
	if err != nil {
		return err
	}

	instrAddr := s.liveLC()
	var opBytes [2]byte
	binary.LittleEndian.PutUint16(opBytes[:], l.opcode)
	s.appendBytes(opBytes[:])

	if l.immKind == immNone {
		return nil
	}
	return s.emitImmediate(l, instrAddr, pos)
}

// emitImmediate writes the trailing immediate bytes of an instruction. If
// the expression is a single reference to an extern symbol, it instead
// writes zero placeholder bytes and records a Relocation for the linker to
// patch; otherwise it evaluates the expression now and writes its value.
func (s *State) emitImmediate(l layout, instrAddr uint32, pos diag.Position) error {
	if name, ok := s.externIdentifier(l.immExpr); ok {
		secIdx := s.currentSection
		offset := s.Object.Sections[secIdx].Size()
		s.appendBytes(make([]byte, l.immWidth))

		symIdx, ok := s.Object.FindSymbol(name)
		if !ok {
			return diag.At(pos, ErrGlobalSymbolUndefined, "extern %q has no symbol table entry", name)
		}

		_, err := s.Object.AddRelocation(obj.Relocation{
			Offset:       offset,
			SymbolIndex:  uint32(symIdx),
			SectionIndex: uint32(secIdx),
			Kind:         l.relocKind,
		})
		if err != nil {
			return diag.At(pos, err, "%s", name)
		}
		return nil
	}

	v, err := s.eval.Eval(l.immExpr)
	if err != nil {
		return diag.At(pos, err, "")
	}
	n, err := v.AsInt()
	if err != nil {
		return diag.At(pos, err, "")
	}

	if l.immKind == immRelPC {
		n = n - int64(instrAddr+2+uint32(l.immWidth))
	}
	if !fitsWidth(n, l.immWidth) {
		if l.immKind == immRelPC {
			return diag.At(pos, ErrRelativeOffsetOutOfRange, "%d", n)
		}
		return diag.At(pos, ErrImmediateOutOfRange, "%d", n)
	}

	buf := make([]byte, l.immWidth)
	switch l.immWidth {
	case 1:
		buf[0] = byte(n)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(n))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(n))
	}
	s.appendBytes(buf)
	return nil
}

func (s *State) externIdentifier(expr []asmtoken.Token) (string, bool) {
	if len(expr) != 1 || expr[0].Kind != asmtoken.KindIdentifier {
		return "", false
	}
	name := expr[0].Lexeme
	if _, isVar := s.vars[name]; isVar {
		return "", false
	}
	if _, isLabel := s.labels[name]; isLabel {
		return "", false
	}
	if s.externs[name] {
		return name, true
	}
	return "", false
}

func (s *State) pass2Directive(d *asmast.DirectiveNode, pos diag.Position) error {
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

	case "byte":
		return s.emitDirectiveItems(d, pos, 1)
	case "word":
		return s.emitDirectiveItems(d, pos, 2)
	case "dword":
		return s.emitDirectiveItems(d, pos, 4)

	case "global", "extern", "let", "const":
		// Handled by Pass 0 / Pass 1 / the symbol table pass.

	default:
		return diag.At(pos, ErrUnknownDirective, "%q", d.Name)
	}
	return nil
}

func (s *State) emitDirectiveItems(d *asmast.DirectiveNode, pos diag.Position, width int) error {
	for _, tokens := range splitDirectiveArgs(d.Args) {
		v, err := s.eval.Eval(tokens)
		if err != nil {
			return diag.At(pos, err, ".%s", d.Name)
		}
		n, err := v.AsInt()
		if err != nil {
			return diag.At(pos, err, ".%s", d.Name)
		}
		if !fitsWidth(n, width) {
			return diag.At(pos, ErrImmediateOutOfRange, "%d", n)
		}
		buf := make([]byte, width)
		switch width {
		case 1:
			buf[0] = byte(n)
		case 2:
			binary.LittleEndian.PutUint16(buf, uint16(n))
		case 4:
			binary.LittleEndian.PutUint32(buf, uint32(n))
		}
		s.appendBytes(buf)
	}
	return nil
}

// splitDirectiveArgs splits a directive's flat token list on top-level
// commas into one token slice per item.
func splitDirectiveArgs(args []asmtoken.Token) [][]asmtoken.Token {
	var items [][]asmtoken.Token
	var cur []asmtoken.Token
	for _, t := range args {
		if t.Lexeme == "," {
			items = append(items, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 || len(items) > 0 {
		items = append(items, cur)
	}
	return items
}
