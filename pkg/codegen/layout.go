package codegen

import (
	"fmt"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/asmtoken"
	"github.com/dgdev1024/g10/pkg/obj"
)

// immKind tags how a layout's trailing immediate bytes behave.
type immKind int

const (
	immNone   immKind = iota
	immAbs            // local value or external-symbol absolute reference
	immRelPC          // JPB: PC-relative offset computed at emission
)

// layout fully describes one encoded instruction: the 16-bit opcode word
// with every operand bit baked in except the immediate, plus how to produce
// the immediate bytes that follow. Pass 1 (pass1_address.go) and Pass 2
// (pass2_emit.go) share this one function so spec.md §8 testable property 3
// ("pass1.size(instruction) == bytes_emitted(instruction)") holds by
// construction rather than by keeping two tables in sync by hand.
type layout struct {
	opcode    uint16
	immKind   immKind
	immWidth  int // 0, 1, 2, or 4
	immExpr   []asmtoken.Token
	relocKind obj.RelocKind
}

func (l layout) size() uint32 { return 2 + uint32(l.immWidth) }

// operandAt returns operands[i], or an error if the operand list is too
// short — every mnemonic case below calls this instead of indexing
// directly so a malformed instruction never panics.
func operandAt(operands []asmast.Operand, i int, pos diag.Position) (asmast.Operand, error) {
	if i >= len(operands) {
		return asmast.Operand{}, diag.At(pos, ErrMalformedOperands, "expected at least %d operand(s)", i+1)
	}
	return operands[i], nil
}

func wantRegister(op asmast.Operand) (regClass, int, error) {
	if op.Kind != asmast.OperandRegister {
		return 0, 0, fmt.Errorf("%w: expected a register operand", ErrOperandTypeMismatch)
	}
	return parseRegister(op.Register)
}

func wantIndirect(op asmast.Operand) (regClass, int, error) {
	if op.Kind != asmast.OperandIndirectMemory {
		return 0, 0, fmt.Errorf("%w: expected an indirect memory operand", ErrOperandTypeMismatch)
	}
	return parseRegister(op.Register)
}

func wantExprOperand(op asmast.Operand, allowedKinds ...asmast.OperandKind) ([]asmtoken.Token, error) {
	for _, k := range allowedKinds {
		if op.Kind == k {
			return op.Expr, nil
		}
	}
	return nil, fmt.Errorf("%w: unexpected operand kind", ErrOperandTypeMismatch)
}

func requireAccumulator(class regClass, idx int) error {
	if idx != 0 {
		return fmt.Errorf("%w: this form requires the accumulator (index 0)", ErrOperandTypeMismatch)
	}
	return nil
}
