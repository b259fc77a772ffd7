package codegen

import (
	"strings"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
)

// runPass0 evaluates every `.let`/`.const` directive up front, in source
// order, so later passes (and later `.let`s referencing earlier ones) see a
// fully populated variable table. Labels are deliberately not touched here:
// they depend on instruction sizes, which Pass 1 computes.
func runPass0(s *State, nodes []asmast.Node) error {
	for _, n := range nodes {
		if n.Kind != asmast.NodeDirective {
			continue
		}
		d := n.Directive
		switch strings.ToLower(d.Name) {
		case "let", "const":
			if err := s.defineVariable(d, strings.ToLower(d.Name) == "const", n.Pos); err != nil {
				return err
			}
		}
	}
	return nil
}

// defineVariable handles both the initial `.let name = expr` / `.const name
// = expr` form and a bare `.let name = expr` reassignment of an
// already-declared non-const variable (there is no separate assignment
// statement in the grammar; `.let` doubles as both per spec.md §4.6).
func (s *State) defineVariable(d *asmast.DirectiveNode, constant bool, pos diag.Position) error {
	if len(d.Args) < 2 {
		return diag.At(pos, ErrMalformedDirective, "%s requires a name and an expression", d.Name)
	}
	name := d.Args[0].Lexeme
	if d.Args[1].Lexeme != "=" {
		return diag.At(pos, ErrMalformedDirective, "%s %s: expected '='", d.Name, name)
	}
	exprTokens := d.Args[2:]
	if len(exprTokens) == 0 {
		return diag.At(pos, ErrMalformedDirective, "%s %s: missing initializer expression", d.Name, name)
	}

	if existing, ok := s.vars[name]; ok && existing.constant {
		return diag.At(pos, ErrAssignToConst, "%q", name)
	}

	v, err := s.eval.Eval(exprTokens)
	if err != nil {
		return diag.At(pos, err, "%s %s", d.Name, name)
	}
	s.vars[name] = variable{value: v, constant: constant}
	return nil
}
