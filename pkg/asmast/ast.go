// Package asmast defines the AST node contract the upstream parser produces
// and every codegen pass consumes. Per spec.md §9's "Polymorphic AST nodes"
// and "Polymorphic operands" design notes, the upstream inheritance-based
// node hierarchy is re-architected here as a tagged variant per node kind,
// pattern-matched (via the Kind field) in every pass rather than downcast.
package asmast

import (
	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmtoken"
)

// NodeKind tags which variant of Node is populated.
type NodeKind int

const (
	NodeLabel NodeKind = iota
	NodeInstruction
	NodeDirective
)

// Node is one statement in the program: a label definition, an instruction,
// or an assembler directive. Only the field matching Kind is populated.
type Node struct {
	Kind        NodeKind
	Pos         diag.Position
	Label       *LabelNode
	Instruction *InstructionNode
	Directive   *DirectiveNode
}

// LabelNode names the address the next emitted byte will occupy.
type LabelNode struct {
	Name string
}

// InstructionNode is one mnemonic plus its operand list, exactly as parsed;
// codegen resolves the mnemonic/operand shape to an opcode family.
type InstructionNode struct {
	Mnemonic string
	Operands []Operand
}

// DirectiveNode is a dot-directive with its raw argument tokens. Directives
// that need structured arguments (`.for`, `.repeat`, conditionals) are
// re-parsed from Args by the preprocessor driver or codegen pass that owns
// their semantics, rather than pre-structured here — keeping this one
// variant generic instead of growing a sub-hierarchy per directive.
type DirectiveNode struct {
	Name string
	Args []asmtoken.Token
}

// OperandKind tags which variant of Operand is populated, per spec.md §9's
// "Polymorphic operands" note: register, immediate, direct-memory,
// indirect-memory, and condition-code forms replace the upstream hierarchy.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandDirectMemory   // [addr-expr]
	OperandIndirectMemory // [Register] or [Register + ...], register-relative
	OperandCondition
)

// Operand is one argument to an instruction.
type Operand struct {
	Kind OperandKind
	Pos  diag.Position

	// Register names the register view for OperandRegister and the base
	// register for OperandIndirectMemory (e.g. "l0", "w3", "d7").
	Register string

	// Expr holds the address/immediate expression for OperandImmediate and
	// OperandDirectMemory, as the raw token sequence the evaluator consumes
	// directly (per spec §4.5, "an expression represented as a token
	// sequence" — there is no separate parsed expression tree).
	Expr []asmtoken.Token

	// Condition names the branch condition mnemonic for OperandCondition
	// ("nc", "zs", "zc", "cs", "cc", "vs", "vc").
	Condition string
}
