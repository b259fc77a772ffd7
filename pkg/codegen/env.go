package codegen

import (
	"github.com/dgdev1024/g10/pkg/asmeval"
	"github.com/dgdev1024/g10/pkg/asmtoken"
)

// LookupMacro always misses: the preprocessor has already expanded every
// `.define` macro out of the token stream before codegen ever sees an AST
// (spec.md §4.5's Environment interface is shared with pkg/preprocess, but
// codegen only ever populates the variable half of it).
func (s *State) LookupMacro(name string) ([]asmtoken.Token, bool) { return nil, false }

// LookupVariable resolves a `.let`/`.const` binding first, then a label
// address from the address-pass's label map (label addresses behave as
// read-only integer variables once Pass 1 has run), satisfying
// asmeval.Environment for both codegen passes.
func (s *State) LookupVariable(name string) (asmeval.Value, bool) {
	if v, ok := s.vars[name]; ok {
		return v.value, true
	}
	if l, ok := s.labels[name]; ok {
		return asmeval.IntValue(int64(l.address)), true
	}
	return asmeval.Value{}, false
}
