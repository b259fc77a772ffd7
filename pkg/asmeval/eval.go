package asmeval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgdev1024/g10/pkg/asmtoken"
)

// Environment resolves identifiers during evaluation. A preprocessor
// instance exposes only LookupMacro (its `.define` table); a codegen
// instance exposes both, since `.let`/`.const` bindings hold direct values
// while earlier-expanded macros have already vanished from the token
// stream by the time codegen sees it.
type Environment interface {
	// LookupMacro returns a macro's replacement token list, per spec §4.5's
	// "substitution textually by replacement-token list".
	LookupMacro(name string) ([]asmtoken.Token, bool)
	// LookupVariable returns a `.let`/`.const` binding's current value.
	LookupVariable(name string) (Value, bool)
}

// Evaluator evaluates token-sequence expressions against an Environment.
type Evaluator struct {
	env Environment
}

func New(env Environment) *Evaluator { return &Evaluator{env: env} }

// Eval evaluates the full token sequence as one expression. It is an error
// for tokens to remain after a complete expression is parsed.
func (e *Evaluator) Eval(tokens []asmtoken.Token) (Value, error) {
	s := asmtoken.NewStream(tokens)
	v, err := e.parseOr(s)
	if err != nil {
		return Value{}, err
	}
	if !s.AtEnd() {
		return Value{}, fmt.Errorf("%w: %q", ErrUnexpectedToken, s.Peek(0).Lexeme)
	}
	return v, nil
}

func isOp(t asmtoken.Token, lexeme string) bool {
	return (t.Kind == asmtoken.KindOperator || t.Kind == asmtoken.KindPunct) && t.Lexeme == lexeme
}

// Precedence, highest to lowest, per spec §4.5:
// unary + - ~ !; **; * / %; + -; << >>; < <= > >=; == !=; &; ^; |; &&; ||.

func (e *Evaluator) parseOr(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseAnd(s)
	if err != nil {
		return Value{}, err
	}
	for isOp(s.Peek(0), "||") {
		s.Next()
		right, err := e.parseAnd(s)
		if err != nil {
			return Value{}, err
		}
		left, err = logicalOr(left, right)
		if err != nil {
			return Value{}, err
		}
	}
	return left, nil
}

func (e *Evaluator) parseAnd(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseBitOr(s)
	if err != nil {
		return Value{}, err
	}
	for isOp(s.Peek(0), "&&") {
		s.Next()
		right, err := e.parseBitOr(s)
		if err != nil {
			return Value{}, err
		}
		left, err = logicalAnd(left, right)
		if err != nil {
			return Value{}, err
		}
	}
	return left, nil
}

func (e *Evaluator) parseBitOr(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseBitXor(s)
	if err != nil {
		return Value{}, err
	}
	for isOp(s.Peek(0), "|") {
		s.Next()
		right, err := e.parseBitXor(s)
		if err != nil {
			return Value{}, err
		}
		left, err = intBinOp(left, right, func(a, b int64) int64 { return a | b })
		if err != nil {
			return Value{}, err
		}
	}
	return left, nil
}

func (e *Evaluator) parseBitXor(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseBitAnd(s)
	if err != nil {
		return Value{}, err
	}
	for isOp(s.Peek(0), "^") {
		s.Next()
		right, err := e.parseBitAnd(s)
		if err != nil {
			return Value{}, err
		}
		left, err = intBinOp(left, right, func(a, b int64) int64 { return a ^ b })
		if err != nil {
			return Value{}, err
		}
	}
	return left, nil
}

func (e *Evaluator) parseBitAnd(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseEquality(s)
	if err != nil {
		return Value{}, err
	}
	for isOp(s.Peek(0), "&") {
		s.Next()
		right, err := e.parseEquality(s)
		if err != nil {
			return Value{}, err
		}
		left, err = intBinOp(left, right, func(a, b int64) int64 { return a & b })
		if err != nil {
			return Value{}, err
		}
	}
	return left, nil
}

func (e *Evaluator) parseEquality(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseRelational(s)
	if err != nil {
		return Value{}, err
	}
	for {
		switch {
		case isOp(s.Peek(0), "=="):
			s.Next()
			right, err := e.parseRelational(s)
			if err != nil {
				return Value{}, err
			}
			left, err = compare(left, right, "==")
			if err != nil {
				return Value{}, err
			}
		case isOp(s.Peek(0), "!="):
			s.Next()
			right, err := e.parseRelational(s)
			if err != nil {
				return Value{}, err
			}
			left, err = compare(left, right, "!=")
			if err != nil {
				return Value{}, err
			}
		default:
			return left, nil
		}
	}
}

func (e *Evaluator) parseRelational(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseShift(s)
	if err != nil {
		return Value{}, err
	}
	for {
		var lexeme string
		switch {
		case isOp(s.Peek(0), "<="):
			lexeme = "<="
		case isOp(s.Peek(0), ">="):
			lexeme = ">="
		case isOp(s.Peek(0), "<"):
			lexeme = "<"
		case isOp(s.Peek(0), ">"):
			lexeme = ">"
		default:
			return left, nil
		}
		s.Next()
		right, err := e.parseShift(s)
		if err != nil {
			return Value{}, err
		}
		left, err = compare(left, right, lexeme)
		if err != nil {
			return Value{}, err
		}
	}
}

func (e *Evaluator) parseShift(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseAdditive(s)
	if err != nil {
		return Value{}, err
	}
	for {
		var shiftLeft bool
		switch {
		case isOp(s.Peek(0), "<<"):
			shiftLeft = true
		case isOp(s.Peek(0), ">>"):
			shiftLeft = false
		default:
			return left, nil
		}
		s.Next()
		right, err := e.parseAdditive(s)
		if err != nil {
			return Value{}, err
		}
		left, err = shift(left, right, shiftLeft)
		if err != nil {
			return Value{}, err
		}
	}
}

func (e *Evaluator) parseAdditive(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseMultiplicative(s)
	if err != nil {
		return Value{}, err
	}
	for {
		switch {
		case isOp(s.Peek(0), "+"):
			s.Next()
			right, err := e.parseMultiplicative(s)
			if err != nil {
				return Value{}, err
			}
			left, err = add(left, right)
			if err != nil {
				return Value{}, err
			}
		case isOp(s.Peek(0), "-"):
			s.Next()
			right, err := e.parseMultiplicative(s)
			if err != nil {
				return Value{}, err
			}
			left, err = numBinOp(left, right, func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b })
			if err != nil {
				return Value{}, err
			}
		default:
			return left, nil
		}
	}
}

func (e *Evaluator) parseMultiplicative(s *asmtoken.Stream) (Value, error) {
	left, err := e.parsePow(s)
	if err != nil {
		return Value{}, err
	}
	for {
		switch {
		case isOp(s.Peek(0), "*"):
			s.Next()
			right, err := e.parsePow(s)
			if err != nil {
				return Value{}, err
			}
			left, err = numBinOp(left, right, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b })
			if err != nil {
				return Value{}, err
			}
		case isOp(s.Peek(0), "/"):
			s.Next()
			right, err := e.parsePow(s)
			if err != nil {
				return Value{}, err
			}
			left, err = divide(left, right)
			if err != nil {
				return Value{}, err
			}
		case isOp(s.Peek(0), "%"):
			s.Next()
			right, err := e.parsePow(s)
			if err != nil {
				return Value{}, err
			}
			left, err = modulo(left, right)
			if err != nil {
				return Value{}, err
			}
		default:
			return left, nil
		}
	}
}

// parsePow is right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2).
func (e *Evaluator) parsePow(s *asmtoken.Stream) (Value, error) {
	left, err := e.parseUnary(s)
	if err != nil {
		return Value{}, err
	}
	if isOp(s.Peek(0), "**") {
		s.Next()
		right, err := e.parsePow(s)
		if err != nil {
			return Value{}, err
		}
		return power(left, right)
	}
	return left, nil
}

func (e *Evaluator) parseUnary(s *asmtoken.Stream) (Value, error) {
	switch {
	case isOp(s.Peek(0), "+"):
		s.Next()
		return e.parseUnary(s)
	case isOp(s.Peek(0), "-"):
		s.Next()
		v, err := e.parseUnary(s)
		if err != nil {
			return Value{}, err
		}
		return negate(v)
	case isOp(s.Peek(0), "~"):
		s.Next()
		v, err := e.parseUnary(s)
		if err != nil {
			return Value{}, err
		}
		i, err := v.AsInt()
		if err != nil {
			return Value{}, err
		}
		return IntValue(^i), nil
	case isOp(s.Peek(0), "!"):
		s.Next()
		v, err := e.parseUnary(s)
		if err != nil {
			return Value{}, err
		}
		i, err := v.AsInt()
		if err != nil {
			return Value{}, err
		}
		if i == 0 {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	default:
		return e.parsePrimary(s)
	}
}

func (e *Evaluator) parsePrimary(s *asmtoken.Stream) (Value, error) {
	if s.AtEnd() {
		return Value{}, ErrUnexpectedEnd
	}
	t := s.Next()

	switch t.Kind {
	case asmtoken.KindNumber:
		return parseNumberLiteral(t.Lexeme)
	case asmtoken.KindString:
		return StringValue(unquote(t.Lexeme)), nil
	case asmtoken.KindIdentifier:
		return e.resolveIdentifier(t.Lexeme)
	case asmtoken.KindPunct:
		if t.Lexeme == "(" {
			v, err := e.parseOr(s)
			if err != nil {
				return Value{}, err
			}
			if !isOp(s.Peek(0), ")") {
				return Value{}, fmt.Errorf("%w: expected ')'", ErrUnexpectedToken)
			}
			s.Next()
			return v, nil
		}
	}

	return Value{}, fmt.Errorf("%w: %q", ErrUnexpectedToken, t.Lexeme)
}

func (e *Evaluator) resolveIdentifier(name string) (Value, error) {
	if replacement, ok := e.env.LookupMacro(name); ok {
		return e.Eval(replacement)
	}
	if v, ok := e.env.LookupVariable(name); ok {
		return v, nil
	}
	return Value{}, fmt.Errorf("%w: %q", ErrUndefinedIdentifier, name)
}

func parseNumberLiteral(lexeme string) (Value, error) {
	lower := strings.ToLower(lexeme)
	switch {
	case strings.HasPrefix(lower, "0x"):
		n, err := strconv.ParseInt(lexeme[2:], 16, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid hex literal %q: %w", lexeme, err)
		}
		return IntValue(n), nil
	case strings.HasPrefix(lower, "0b"):
		n, err := strconv.ParseInt(strings.ReplaceAll(lexeme[2:], "_", ""), 2, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid binary literal %q: %w", lexeme, err)
		}
		return IntValue(n), nil
	case strings.Contains(lexeme, "."):
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid fixed-point literal %q: %w", lexeme, err)
		}
		return Value{Kind: KindFixed, Fixed: floatToFixed(f)}, nil
	default:
		n, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid integer literal %q: %w", lexeme, err)
		}
		return IntValue(n), nil
	}
}

func unquote(lexeme string) string {
	if len(lexeme) >= 2 && lexeme[0] == '"' && lexeme[len(lexeme)-1] == '"' {
		lexeme = lexeme[1 : len(lexeme)-1]
	}
	replacer := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t")
	return replacer.Replace(lexeme)
}
