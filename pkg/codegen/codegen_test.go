package codegen_test

import (
	"testing"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/asmtoken"
	"github.com/dgdev1024/g10/pkg/codegen"
	"github.com/dgdev1024/g10/pkg/obj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pos = diag.Position{File: "test.asm", Line: 1, Column: 1}

func num(lexeme string) asmtoken.Token  { return asmtoken.New(asmtoken.KindNumber, lexeme, pos) }
func ident(name string) asmtoken.Token  { return asmtoken.New(asmtoken.KindIdentifier, name, pos) }
func punct(lexeme string) asmtoken.Token { return asmtoken.New(asmtoken.KindPunct, lexeme, pos) }

func label(name string) asmast.Node {
	return asmast.Node{Kind: asmast.NodeLabel, Pos: pos, Label: &asmast.LabelNode{Name: name}}
}

func insn(mnemonic string, operands ...asmast.Operand) asmast.Node {
	return asmast.Node{Kind: asmast.NodeInstruction, Pos: pos, Instruction: &asmast.InstructionNode{Mnemonic: mnemonic, Operands: operands}}
}

func directive(name string, args ...asmtoken.Token) asmast.Node {
	return asmast.Node{Kind: asmast.NodeDirective, Pos: pos, Directive: &asmast.DirectiveNode{Name: name, Args: args}}
}

func regOperand(name string) asmast.Operand {
	return asmast.Operand{Kind: asmast.OperandRegister, Pos: pos, Register: name}
}

func immOperand(tokens ...asmtoken.Token) asmast.Operand {
	return asmast.Operand{Kind: asmast.OperandImmediate, Pos: pos, Expr: tokens}
}

func indirectOperand(reg string) asmast.Operand {
	return asmast.Operand{Kind: asmast.OperandIndirectMemory, Pos: pos, Register: reg}
}

// TestSmallestValidObject mirrors the "smallest valid object" scenario: an
// `.org` followed by two zero-operand instructions should produce one
// contiguous code section starting at the requested address.
func TestSmallestValidObject(t *testing.T) {
	nodes := []asmast.Node{
		directive("org", num("0x2000")),
		insn("nop"),
		insn("halt"),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)
	require.Len(t, o.Sections, 1)

	sec := o.Sections[0]
	assert.EqualValues(t, 0x2000, sec.VirtualAddress)
	// NOP (family 0x00) then HALT (family 0x02), each opcode written
	// little-endian: low byte carries the x/y nibbles, high byte the family.
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02}, sec.Data)
}

// TestLabelAndForwardJump mirrors "label and forward jump": a JMP to a
// label defined later in the same section resolves to that label's final
// address without any relocation, since both live in the same object.
func TestLabelAndForwardJump(t *testing.T) {
	nodes := []asmast.Node{
		directive("org", num("0x2000")),
		insn("jmp", immOperand(ident("start"))),
		directive("byte", num("0"), punct(","), num("0")),
		label("start"),
		insn("nop"),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)
	require.Len(t, o.Sections, 1)
	require.Empty(t, o.Relocations)

	sec := o.Sections[0]
	// JMP imm32 is 6 bytes (2 opcode + 4 immediate), so the `.byte 0, 0`
	// that follows sits at $2006 and `start:` resolves to $2008.
	assert.Equal(t, []byte{
		0x00, 0x40, // JMP opcode
		0x08, 0x20, 0x00, 0x00, // target address 0x00002008, little-endian
		0x00, 0x00, // .byte 0, 0
		0x00, 0x00, // NOP at start
	}, sec.Data)
}

// TestExternalSymbolRelocation mirrors "external symbol relocation": a CALL
// to a name declared `.extern` cannot be resolved locally, so codegen must
// emit a zero-filled placeholder plus a Relocation record instead.
func TestExternalSymbolRelocation(t *testing.T) {
	nodes := []asmast.Node{
		directive("extern", ident("foo")),
		directive("org", num("0x2000")),
		insn("call", immOperand(ident("foo"))),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)
	require.Len(t, o.Sections, 1)
	require.Len(t, o.Relocations, 1)

	sec := o.Sections[0]
	assert.Equal(t, []byte{0x00, 0x43, 0x00, 0x00, 0x00, 0x00}, sec.Data)

	rel := o.Relocations[0]
	assert.EqualValues(t, 2, rel.Offset)
	assert.Equal(t, obj.RelocAbs32, rel.Kind)

	sym := o.Symbols[rel.SymbolIndex]
	assert.Equal(t, "foo", sym.Name)
	assert.Equal(t, obj.BindingExtern, sym.Binding)
	assert.EqualValues(t, obj.SectionUndef, sym.SectionIndex)

	assert.True(t, o.Flags.Has(obj.FlagHasReloc))
}

func TestGlobalLabelBecomesGlobalSymbol(t *testing.T) {
	nodes := []asmast.Node{
		directive("global", ident("main")),
		directive("org", num("0x2000")),
		label("main"),
		insn("halt"),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)

	idx, ok := o.FindSymbol("main")
	require.True(t, ok)
	sym := o.Symbols[idx]
	assert.Equal(t, obj.BindingGlobal, sym.Binding)
	assert.EqualValues(t, 0x2000, sym.Value)
	assert.True(t, o.Flags.Has(obj.FlagHasEntry))
}

func TestUndefinedGlobalIsAnError(t *testing.T) {
	nodes := []asmast.Node{
		directive("global", ident("missing")),
		directive("org", num("0x2000")),
		insn("nop"),
	}

	_, err := codegen.Generate(nodes)
	assert.ErrorIs(t, err, codegen.ErrGlobalSymbolUndefined)
}

func TestDuplicateLabelIsAnError(t *testing.T) {
	nodes := []asmast.Node{
		directive("org", num("0x2000")),
		label("again"),
		insn("nop"),
		label("again"),
		insn("halt"),
	}

	_, err := codegen.Generate(nodes)
	assert.ErrorIs(t, err, codegen.ErrLabelRedefinition)
}

func TestInstructionInRamIsRejected(t *testing.T) {
	nodes := []asmast.Node{
		directive("ram"),
		insn("nop"),
	}

	_, err := codegen.Generate(nodes)
	assert.ErrorIs(t, err, codegen.ErrInstructionsNotAllowedInRam)
}

func TestLdImmediateIntoRegister(t *testing.T) {
	nodes := []asmast.Node{
		directive("org", num("0x2000")),
		insn("ld", regOperand("l0"), immOperand(num("0x42"))),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)
	sec := o.Sections[0]
	// LD Lx, imm8: opcode family 0x10, x=0, y=0, then the immediate byte.
	assert.Equal(t, []byte{0x00, 0x10, 0x42}, sec.Data)
}

func TestStoreIndirectThroughDRegister(t *testing.T) {
	nodes := []asmast.Node{
		directive("org", num("0x2000")),
		insn("st", indirectOperand("d0"), regOperand("l3")),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)
	sec := o.Sections[0]
	// ST [Dx], Ly: family 0x18, x=0 (d0), y=3 (l3).
	assert.Equal(t, []byte{0x03, 0x18}, sec.Data)
}

func TestJpbEncodesPcRelativeOffset(t *testing.T) {
	nodes := []asmast.Node{
		directive("org", num("0x2000")),
		insn("jpb", immOperand(ident("target"))),
		insn("nop"),
		label("target"),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)
	sec := o.Sections[0]
	// JPB at $2000 is 4 bytes (2 opcode + 2 imm), NOP at $2004 is 2 bytes,
	// so target sits at $2006: offset = 0x2006 - (0x2000 + 4) = 2.
	assert.Equal(t, uint8(0x02), sec.Data[2])
	assert.Equal(t, uint8(0x00), sec.Data[3])
}

func TestIntVectorOutOfRangeIsRejected(t *testing.T) {
	nodes := []asmast.Node{
		directive("org", num("0x2000")),
		insn("int", immOperand(num("32"))),
	}

	_, err := codegen.Generate(nodes)
	assert.ErrorIs(t, err, codegen.ErrVectorOutOfRange)
}

func TestConstReassignmentFails(t *testing.T) {
	nodes := []asmast.Node{
		directive("const", ident("LIMIT"), punct("="), num("10")),
		directive("const", ident("LIMIT"), punct("="), num("20")),
		directive("org", num("0x2000")),
		insn("nop"),
	}

	_, err := codegen.Generate(nodes)
	assert.ErrorIs(t, err, codegen.ErrAssignToConst)
}

func TestLetVariableUsedAsBitIndex(t *testing.T) {
	nodes := []asmast.Node{
		directive("let", ident("FLAG_BIT"), punct("="), num("3")),
		directive("org", num("0x2000")),
		insn("bit", immOperand(ident("FLAG_BIT")), regOperand("l0")),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)
	sec := o.Sections[0]
	// BIT b, Lx: family 0xA0, x=bit(3), y=0.
	assert.Equal(t, []byte{0x30, 0xA0}, sec.Data)
}

func TestIntVectorComputesIvtAddress(t *testing.T) {
	nodes := []asmast.Node{
		directive("int", num("2")),
		label("handler"),
		insn("reti"),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)

	idx, ok := o.FindSymbol("handler")
	require.True(t, ok)
	// $1000 + 2*$80 = $1100
	assert.EqualValues(t, 0x1100, o.Symbols[idx].Value)
}

func TestRomRamRegionSwapPreservesEachCounter(t *testing.T) {
	nodes := []asmast.Node{
		directive("org", num("0x3000")),
		directive("ram"),
		directive("org", num("0x80001000")),
		directive("rom"),
		label("after_swap"),
		insn("nop"),
	}

	o, err := codegen.Generate(nodes)
	require.NoError(t, err)

	idx, ok := o.FindSymbol("after_swap")
	require.True(t, ok)
	// rom_lc was left at 0x3000 by the first `.org`, and `.rom` restores it
	// rather than continuing from where `.ram` moved on to.
	assert.EqualValues(t, 0x3000, o.Symbols[idx].Value)
}
