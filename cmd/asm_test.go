package cmd

import (
	"testing"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/asmtoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asmTestPos = diag.Position{File: "test.asm", Line: 1, Column: 1}

func asmTestNodes() []asmast.Node {
	org := asmast.Node{
		Kind: asmast.NodeDirective, Pos: asmTestPos,
		Directive: &asmast.DirectiveNode{
			Name: "org",
			Args: []asmtoken.Token{asmtoken.New(asmtoken.KindNumber, "0x2000", asmTestPos)},
		},
	}
	halt := asmast.Node{
		Kind: asmast.NodeInstruction, Pos: asmTestPos,
		Instruction: &asmast.InstructionNode{Mnemonic: "halt"},
	}
	return []asmast.Node{org, halt}
}

func TestAssembleRunsCodegen(t *testing.T) {
	o, err := Assemble(asmTestNodes())
	require.NoError(t, err)
	require.Len(t, o.Sections, 1)
	assert.EqualValues(t, 0x2000, o.Sections[0].VirtualAddress)
	assert.Equal(t, []byte{0x00, 0x02}, o.Sections[0].Data)
}

func TestAssemblePropagatesCodegenDiagnostics(t *testing.T) {
	bad := []asmast.Node{
		{Kind: asmast.NodeInstruction, Pos: asmTestPos, Instruction: &asmast.InstructionNode{Mnemonic: "frobnicate"}},
	}
	_, err := Assemble(bad)
	assert.Error(t, err)
}

func TestDefaultSourceParserReportsMissingUpstream(t *testing.T) {
	_, err := SourceParser("program.g10asm")
	assert.ErrorIs(t, err, ErrNoSourceParser)
}
