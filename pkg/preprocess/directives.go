package preprocess

import (
	"fmt"
	"strings"

	"github.com/dgdev1024/g10/pkg/asmtoken"
)

// maxWhileIterations bounds `.while` per spec.md §4.6's "hard iteration cap
// (implementation-chosen large value)". Grounded on
// original_source/projects/g10asm/preprocessor.cpp's
// `constexpr std::size_t MAX_ITERATIONS = 1000000;`.
const maxWhileIterations = 1_000_000

// skipToBoundary scans forward from i, tracking `.if`/`.ifdef`/`.ifndef`
// nesting, and returns the index of the next `.elif`, `.else`, or `.endif`
// at this conditional's own depth — without evaluating anything in
// between, per spec.md §4.6 rule 2.
func skipToBoundary(tokens []asmtoken.Token, i int) (int, error) {
	depth := 0
	for ; i < len(tokens); i++ {
		if tokens[i].Kind != asmtoken.KindDirective {
			continue
		}
		switch tokens[i].Lexeme {
		case ".if", ".ifdef", ".ifndef":
			depth++
		case ".endif":
			if depth == 0 {
				return i, nil
			}
			depth--
		case ".elif", ".else":
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, ErrUnclosedConditional
}

func (d *Driver) handleIf(tokens []asmtoken.Token, i int, stack *[]condFrame) (int, error) {
	line, next := collectLine(tokens, i+1)
	val, err := d.eval.Eval(line)
	if err != nil {
		return 0, err
	}
	n, err := val.AsInt()
	if err != nil {
		return 0, err
	}
	active := n != 0
	*stack = append(*stack, condFrame{conditionMet: active, currentlyActive: active})
	if !active {
		return skipToBoundary(tokens, next)
	}
	return next, nil
}

func (d *Driver) handleIfdef(tokens []asmtoken.Token, i int, stack *[]condFrame, wantDefined bool) (int, error) {
	line, next := collectLine(tokens, i+1)
	if len(line) == 0 {
		return 0, fmt.Errorf("%w: %s missing macro name", errStrayDirective, tokens[i].Lexeme)
	}
	_, defined := d.macros[line[0].Lexeme]
	active := defined == wantDefined
	*stack = append(*stack, condFrame{conditionMet: active, currentlyActive: active})
	if !active {
		return skipToBoundary(tokens, next)
	}
	return next, nil
}

func (d *Driver) handleElif(tokens []asmtoken.Token, i int, stack *[]condFrame) (int, error) {
	if len(*stack) == 0 {
		return 0, fmt.Errorf("%w: .elif", errStrayDirective)
	}
	top := &(*stack)[len(*stack)-1]
	if top.elseSeen {
		return 0, fmt.Errorf("%w: .elif after .else", ErrElseAfterElse)
	}

	line, next := collectLine(tokens, i+1)
	if top.conditionMet {
		top.currentlyActive = false
	} else {
		val, err := d.eval.Eval(line)
		if err != nil {
			return 0, err
		}
		n, err := val.AsInt()
		if err != nil {
			return 0, err
		}
		top.currentlyActive = n != 0
		if top.currentlyActive {
			top.conditionMet = true
		}
	}
	if !top.currentlyActive {
		return skipToBoundary(tokens, next)
	}
	return next, nil
}

func (d *Driver) handleElse(tokens []asmtoken.Token, i int, stack *[]condFrame) (int, error) {
	if len(*stack) == 0 {
		return 0, fmt.Errorf("%w: .else", errStrayDirective)
	}
	top := &(*stack)[len(*stack)-1]
	if top.elseSeen {
		return 0, fmt.Errorf("%w: .else after .else", ErrElseAfterElse)
	}
	top.elseSeen = true

	_, next := collectLine(tokens, i+1)
	top.currentlyActive = !top.conditionMet
	if top.currentlyActive {
		top.conditionMet = true
	}
	if !top.currentlyActive {
		return skipToBoundary(tokens, next)
	}
	return next, nil
}

func (d *Driver) handleEndif(tokens []asmtoken.Token, i int, stack *[]condFrame) (int, error) {
	if len(*stack) == 0 {
		return 0, fmt.Errorf("%w: .endif", errStrayDirective)
	}
	*stack = (*stack)[:len(*stack)-1]
	_, next := collectLine(tokens, i+1)
	return next, nil
}

func (d *Driver) handleDefine(tokens []asmtoken.Token, i int) (int, error) {
	if i+1 >= len(tokens) || tokens[i+1].Kind != asmtoken.KindIdentifier {
		return 0, fmt.Errorf("%w: .define missing macro name", errStrayDirective)
	}
	name := tokens[i+1].Lexeme
	line, next := collectLine(tokens, i+2)

	replacement, err := d.evalNestedBraces(line)
	if err != nil {
		return 0, err
	}

	if _, exists := d.macros[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrMacroRedefinition, name)
	}
	d.macros[name] = replacement
	return next, nil
}

// evalNestedBraces evaluates every top-level `{...}` subexpression in
// line at definition time and splices its literal rendering back in,
// per spec.md §4.6's "`.define` ... evaluating any `{…}` subexpressions
// at definition time to integer-literal tokens stored in the replacement".
func (d *Driver) evalNestedBraces(line []asmtoken.Token) ([]asmtoken.Token, error) {
	var out []asmtoken.Token
	for i := 0; i < len(line); i++ {
		if line[i].Kind == asmtoken.KindPunct && line[i].Lexeme == "{" {
			close, err := matchingBrace(line, i)
			if err != nil {
				return nil, err
			}
			val, err := d.eval.Eval(line[i+1 : close])
			if err != nil {
				return nil, err
			}
			out = append(out, literalToken(val, line[i].Pos))
			i = close
			continue
		}
		out = append(out, line[i])
	}
	return out, nil
}

func (d *Driver) handleUndef(tokens []asmtoken.Token, i int) (int, error) {
	if i+1 >= len(tokens) || tokens[i+1].Kind != asmtoken.KindIdentifier {
		return 0, fmt.Errorf("%w: .undef missing macro name", errStrayDirective)
	}
	name := tokens[i+1].Lexeme
	_, next := collectLine(tokens, i+2)

	if _, ok := d.macros[name]; !ok {
		d.Warnings = append(d.Warnings, fmt.Errorf("undef of undefined macro %q", name))
		return next, nil
	}
	delete(d.macros, name)
	return next, nil
}

// findLoopBody scans from start (the first token of a loop body) for the
// close directive matching the loop kind named by openDirective, tolerating
// arbitrarily nested `.repeat`/`.for`/`.while` bodies in between. It returns
// the index of the close directive token itself (not consumed).
func findLoopBody(tokens []asmtoken.Token, start int, openDirective string) (int, error) {
	wantClose := map[string]string{".repeat": ".endrepeat", ".for": ".endfor", ".while": ".endwhile"}[openDirective]
	var stack []string
	for i := start; i < len(tokens); i++ {
		if tokens[i].Kind != asmtoken.KindDirective {
			continue
		}
		switch tokens[i].Lexeme {
		case ".repeat", ".for", ".while":
			stack = append(stack, tokens[i].Lexeme)
		case ".endrepeat", ".endfor", ".endwhile":
			if len(stack) == 0 {
				if tokens[i].Lexeme != wantClose {
					return 0, fmt.Errorf("%w: expected %s, found %s", errStrayDirective, wantClose, tokens[i].Lexeme)
				}
				return i, nil
			}
			stack = stack[:len(stack)-1]
		}
	}
	return 0, ErrUnclosedConditional
}

func (d *Driver) handleRepeat(tokens []asmtoken.Token, i int, out *strings.Builder) (int, error) {
	line, bodyStart := collectLine(tokens, i+1)
	parts := splitTopLevelCommas(line)

	nVal, err := d.eval.Eval(parts[0])
	if err != nil {
		return 0, err
	}
	n, err := nVal.AsInt()
	if err != nil {
		return 0, err
	}

	varName := ""
	if len(parts) > 1 {
		varTokens := parts[1]
		if len(varTokens) != 1 || varTokens[0].Kind != asmtoken.KindIdentifier {
			return 0, fmt.Errorf("%w: .repeat variable must be a bare identifier", errStrayDirective)
		}
		varName = varTokens[0].Lexeme
	}

	closeIdx, err := findLoopBody(tokens, bodyStart, ".repeat")
	if err != nil {
		return 0, err
	}
	body := tokens[bodyStart:closeIdx]
	_, next := collectLine(tokens, closeIdx+1)

	for iter := int64(0); iter < n; iter++ {
		if varName != "" {
			d.macros[varName] = []asmtoken.Token{intToken(iter, tokens[i].Pos)}
		}
		brk, _, err := d.run(body, out)
		if err != nil {
			if varName != "" {
				delete(d.macros, varName)
			}
			return 0, err
		}
		if brk {
			break
		}
	}
	if varName != "" {
		delete(d.macros, varName)
	}
	return next, nil
}

func (d *Driver) handleFor(tokens []asmtoken.Token, i int, out *strings.Builder) (int, error) {
	line, bodyStart := collectLine(tokens, i+1)
	parts := splitTopLevelCommas(line)
	if len(parts) < 3 {
		return 0, fmt.Errorf("%w: .for requires VAR, START, END", errStrayDirective)
	}
	if len(parts[0]) != 1 || parts[0][0].Kind != asmtoken.KindIdentifier {
		return 0, fmt.Errorf("%w: .for variable must be a bare identifier", errStrayDirective)
	}
	varName := parts[0][0].Lexeme

	startVal, err := d.eval.Eval(parts[1])
	if err != nil {
		return 0, err
	}
	start, err := startVal.AsInt()
	if err != nil {
		return 0, err
	}
	endVal, err := d.eval.Eval(parts[2])
	if err != nil {
		return 0, err
	}
	end, err := endVal.AsInt()
	if err != nil {
		return 0, err
	}

	step := int64(1)
	if len(parts) > 3 {
		stepVal, err := d.eval.Eval(parts[3])
		if err != nil {
			return 0, err
		}
		step, err = stepVal.AsInt()
		if err != nil {
			return 0, err
		}
		if step == 0 {
			return 0, fmt.Errorf("%w: .for step cannot be zero", errStrayDirective)
		}
	}

	closeIdx, err := findLoopBody(tokens, bodyStart, ".for")
	if err != nil {
		return 0, err
	}
	body := tokens[bodyStart:closeIdx]
	_, next := collectLine(tokens, closeIdx+1)

	for v := start; (step > 0 && v < end) || (step < 0 && v > end); v += step {
		d.macros[varName] = []asmtoken.Token{intToken(v, tokens[i].Pos)}
		brk, _, err := d.run(body, out)
		if err != nil {
			delete(d.macros, varName)
			return 0, err
		}
		if brk {
			break
		}
	}
	delete(d.macros, varName)
	return next, nil
}

func (d *Driver) handleWhile(tokens []asmtoken.Token, i int, out *strings.Builder) (int, error) {
	line, bodyStart := collectLine(tokens, i+1)
	parts := splitTopLevelCommas(line)
	exprTokens := parts[0]

	varName := ""
	if len(parts) > 1 {
		varTokens := parts[1]
		if len(varTokens) != 1 || varTokens[0].Kind != asmtoken.KindIdentifier {
			return 0, fmt.Errorf("%w: .while variable must be a bare identifier", errStrayDirective)
		}
		varName = varTokens[0].Lexeme
	}

	closeIdx, err := findLoopBody(tokens, bodyStart, ".while")
	if err != nil {
		return 0, err
	}
	body := tokens[bodyStart:closeIdx]
	_, next := collectLine(tokens, closeIdx+1)

	iterations := 0
	for {
		val, err := d.eval.Eval(exprTokens)
		if err != nil {
			if varName != "" {
				delete(d.macros, varName)
			}
			return 0, err
		}
		cond, err := val.AsInt()
		if err != nil {
			return 0, err
		}
		if cond == 0 {
			break
		}
		iterations++
		if iterations > maxWhileIterations {
			if varName != "" {
				delete(d.macros, varName)
			}
			return 0, ErrInfiniteLoop
		}
		if varName != "" {
			d.macros[varName] = []asmtoken.Token{intToken(int64(iterations-1), tokens[i].Pos)}
		}
		brk, _, err := d.run(body, out)
		if err != nil {
			if varName != "" {
				delete(d.macros, varName)
			}
			return 0, err
		}
		if brk {
			break
		}
	}
	if varName != "" {
		delete(d.macros, varName)
	}
	return next, nil
}
