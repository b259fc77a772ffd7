package preprocess

import "errors"

// Error sentinels mirror spec.md §7's preprocessor error taxonomy.
var (
	ErrMacroRedefinition   = errors.New("macro redefinition")
	ErrUnclosedConditional = errors.New("unclosed conditional")
	ErrElseAfterElse       = errors.New("else after else")
	ErrBreakOutsideLoop    = errors.New("break outside loop")
	ErrContinueOutsideLoop = errors.New("continue outside loop")
	ErrInfiniteLoop        = errors.New("infinite loop")
	ErrUnmatchedBrace      = errors.New("unmatched brace")

	// errStrayDirective covers a closing directive with no matching opener
	// (bare .endif/.endrepeat/.endfor/.endwhile, or .elif/.else without .if).
	// Not named in spec.md's taxonomy; it is a variant of UnclosedConditional
	// for the symmetric "closer with no opener" case. It is also returned for
	// a malformed preprocessor directive (a missing macro name, a loop
	// variable that is not a bare identifier, a short `.for` header, or a
	// zero `.for` step).
	errStrayDirective = errors.New("directive has no matching opener")
)
