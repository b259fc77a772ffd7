package codegen

import "errors"

// Error taxonomy per spec.md §7's codegen row.
var (
	ErrLabelRedefinition           = errors.New("label redefined")
	ErrInstructionsNotAllowedInRam = errors.New("instructions not allowed in ram")
	ErrOperandTypeMismatch         = errors.New("operand type mismatch")
	ErrImmediateOutOfRange         = errors.New("immediate out of range")
	ErrRelativeOffsetOutOfRange    = errors.New("relative offset out of range")
	ErrGlobalSymbolUndefined       = errors.New("global symbol has no definition")
	ErrGlobalExternConflict        = errors.New("name declared both global and extern")

	ErrAssignToConst     = errors.New("assignment to const")
	ErrUnknownDirective  = errors.New("unknown directive")
	ErrUnknownMnemonic   = errors.New("unknown mnemonic")
	ErrUnknownRegister   = errors.New("unknown register")
	ErrUnknownCondition  = errors.New("unknown condition code")
	ErrMalformedOperands = errors.New("malformed operand list")
	ErrMalformedDirective = errors.New("malformed directive arguments")
	ErrVectorOutOfRange  = errors.New("interrupt vector out of range")
)
