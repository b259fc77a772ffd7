// Package preprocess implements the assembler's macro preprocessor described
// by spec.md §4.6: a single pass over a token stream that expands macros,
// evaluates conditional/loop directives, and performs identifier/string
// interpolation, producing the expanded source text the (upstream) parser
// consumes. Grounded on the directive-dispatch and iteration-cap shape of
// original_source/projects/g10asm/preprocessor.cpp, re-expressed as Go
// control flow over pkg/asmtoken and reusing pkg/asmeval for every
// bracketed subexpression.
package preprocess

import (
	"fmt"
	"strings"

	"github.com/dgdev1024/g10/pkg/asmeval"
	"github.com/dgdev1024/g10/pkg/asmtoken"
)

// condFrame tracks one level of `.if`/`.elif`/`.else`/`.endif` nesting.
type condFrame struct {
	conditionMet    bool // true once any branch in this chain has been taken
	currentlyActive bool
	elseSeen        bool
}

// Driver holds the macro table and wires itself as the asmeval.Environment
// for every expression this pass evaluates. It has no variable bindings of
// its own — that's codegen's `.let`/`.const` table, a separate Environment.
type Driver struct {
	macros map[string][]asmtoken.Token
	eval   *asmeval.Evaluator

	// Warnings accumulates non-fatal diagnostics (e.g. `.undef` of an absent
	// macro), per spec.md's "a warning, not an error" for that case.
	Warnings []error
}

func New() *Driver {
	d := &Driver{macros: map[string][]asmtoken.Token{}}
	d.eval = asmeval.New(d)
	return d
}

func (d *Driver) LookupMacro(name string) ([]asmtoken.Token, bool) {
	t, ok := d.macros[name]
	return t, ok
}

// LookupVariable is always a miss: the preprocessor has no `.let`/`.const`
// bindings, only macros. Codegen supplies its own Environment for those.
func (d *Driver) LookupVariable(string) (asmeval.Value, bool) {
	return asmeval.Value{}, false
}

// Process expands the full token stream and returns the rendered source.
func (d *Driver) Process(tokens []asmtoken.Token) (string, error) {
	spliced := removeLineSplices(tokens)

	var out strings.Builder
	brk, cont, err := d.run(spliced, &out)
	if err != nil {
		return "", err
	}
	if brk {
		return "", ErrBreakOutsideLoop
	}
	if cont {
		return "", ErrContinueOutsideLoop
	}
	return out.String(), nil
}

// removeLineSplices discards every backslash token immediately followed by
// a newline token, per spec.md §4.6 rule 1. Handling this as a separate
// pre-pass (rather than inline in run's per-token decision) is equivalent
// and simpler: nothing downstream of splicing needs to see the discarded
// pair.
func removeLineSplices(tokens []asmtoken.Token) []asmtoken.Token {
	out := make([]asmtoken.Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if tokens[i].Kind == asmtoken.KindBackslash && i+1 < len(tokens) && tokens[i+1].Kind == asmtoken.KindNewline {
			i++
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

// run processes one token slice (the top-level program, or a captured loop
// body) into out. It returns (brk, cont) when a `.break`/`.continue`
// directive terminates the slice early; the caller — a loop handler, or
// Process for the top level — decides what that means.
func (d *Driver) run(tokens []asmtoken.Token, out *strings.Builder) (brk bool, cont bool, err error) {
	var condStack []condFrame
	i := 0

	for i < len(tokens) {
		t := tokens[i]

		if t.Kind == asmtoken.KindDirective {
			switch t.Lexeme {
			case ".if":
				i, err = d.handleIf(tokens, i, &condStack)
			case ".ifdef":
				i, err = d.handleIfdef(tokens, i, &condStack, true)
			case ".ifndef":
				i, err = d.handleIfdef(tokens, i, &condStack, false)
			case ".elif":
				i, err = d.handleElif(tokens, i, &condStack)
			case ".else":
				i, err = d.handleElse(tokens, i, &condStack)
			case ".endif":
				i, err = d.handleEndif(tokens, i, &condStack)
			case ".define":
				i, err = d.handleDefine(tokens, i)
			case ".undef":
				i, err = d.handleUndef(tokens, i)
			case ".repeat":
				i, err = d.handleRepeat(tokens, i, out)
			case ".for":
				i, err = d.handleFor(tokens, i, out)
			case ".while":
				i, err = d.handleWhile(tokens, i, out)
			case ".endrepeat", ".endfor", ".endwhile":
				err = fmt.Errorf("%w: %q", errStrayDirective, t.Lexeme)
			case ".break":
				_, i = collectLine(tokens, i+1)
				return true, false, nil
			case ".continue":
				_, i = collectLine(tokens, i+1)
				return false, true, nil
			default:
				// A directive outside the preprocessor's own set (.org, .let,
				// .byte, .global, ...) belongs to codegen; pass it through.
				d.emitToken(out, t)
				i++
			}
			if err != nil {
				return false, false, err
			}
			continue
		}

		if t.Kind == asmtoken.KindNewline {
			out.WriteByte('\n')
			i++
			continue
		}

		piece, nextI, matched, err := d.tryInterpolateChain(tokens, i)
		if err != nil {
			return false, false, err
		}
		if matched {
			d.emitText(out, piece, t.PrecededBySpace)
			i = nextI
			continue
		}

		switch {
		case t.Kind == asmtoken.KindString && strings.ContainsRune(t.Lexeme, '{'):
			text, err := d.interpolateString(t.Lexeme)
			if err != nil {
				return false, false, err
			}
			d.emitText(out, text, t.PrecededBySpace)
			i++
		case t.Kind == asmtoken.KindPunct && t.Lexeme == "{":
			text, nextI, err := d.evalBareBrace(tokens, i)
			if err != nil {
				return false, false, err
			}
			d.emitText(out, text, t.PrecededBySpace)
			i = nextI
		case t.Kind == asmtoken.KindIdentifier:
			if replacement, ok := d.macros[t.Lexeme]; ok {
				d.emitMacroReplacement(out, replacement, t.PrecededBySpace)
			} else {
				d.emitToken(out, t)
			}
			i++
		default:
			d.emitToken(out, t)
			i++
		}
	}

	return false, false, nil
}

func (d *Driver) emitToken(out *strings.Builder, t asmtoken.Token) {
	d.emitText(out, t.Lexeme, t.PrecededBySpace)
}

func (d *Driver) emitText(out *strings.Builder, text string, spaced bool) {
	if spaced && out.Len() > 0 {
		out.WriteByte(' ')
	}
	out.WriteString(text)
}

func (d *Driver) emitMacroReplacement(out *strings.Builder, replacement []asmtoken.Token, leadingSpace bool) {
	for i, t := range replacement {
		spaced := t.PrecededBySpace
		if i == 0 {
			spaced = leadingSpace
		}
		d.emitText(out, t.Lexeme, spaced)
	}
}

// collectLine returns the tokens from i up to (not including) the next
// newline, and the index just past that newline (or len(tokens) at EOF).
func collectLine(tokens []asmtoken.Token, i int) ([]asmtoken.Token, int) {
	start := i
	for i < len(tokens) && tokens[i].Kind != asmtoken.KindNewline {
		i++
	}
	line := tokens[start:i]
	if i < len(tokens) {
		i++ // consume the newline
	}
	return line, i
}

// splitTopLevelCommas splits tokens on commas that are not nested inside
// parentheses, for directive argument lists like `.for VAR, START, END`.
func splitTopLevelCommas(tokens []asmtoken.Token) [][]asmtoken.Token {
	var parts [][]asmtoken.Token
	depth := 0
	start := 0
	for i, t := range tokens {
		if t.Kind == asmtoken.KindPunct && t.Lexeme == "(" {
			depth++
		} else if t.Kind == asmtoken.KindPunct && t.Lexeme == ")" {
			depth--
		} else if depth == 0 && t.Kind == asmtoken.KindPunct && t.Lexeme == "," {
			parts = append(parts, tokens[start:i])
			start = i + 1
		}
	}
	parts = append(parts, tokens[start:])
	return parts
}
