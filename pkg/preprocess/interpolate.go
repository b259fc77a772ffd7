package preprocess

import (
	"fmt"
	"strings"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmeval"
	"github.com/dgdev1024/g10/pkg/asmtoken"
)

// matchingBrace returns the index of the `}` balancing the `{` at openIdx.
func matchingBrace(tokens []asmtoken.Token, openIdx int) (int, error) {
	depth := 0
	for i := openIdx; i < len(tokens); i++ {
		switch tokens[i].Lexeme {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, ErrUnmatchedBrace
}

func literalToken(v asmeval.Value, pos diag.Position) asmtoken.Token {
	if v.Kind == asmeval.KindString {
		return asmtoken.New(asmtoken.KindString, `"`+v.Str+`"`, pos)
	}
	return asmtoken.New(asmtoken.KindNumber, v.String(), pos)
}

func intToken(v int64, pos diag.Position) asmtoken.Token {
	return asmtoken.New(asmtoken.KindNumber, fmt.Sprintf("%d", v), pos)
}

// tryInterpolateChain implements spec.md §4.6 rule 5: a run of identifiers
// and braced expressions with no whitespace between any of them collapses
// into a single bare identifier in the output. A lone identifier or a lone
// brace is not a chain (matched=false) and falls through to the normal
// per-token rules.
func (d *Driver) tryInterpolateChain(tokens []asmtoken.Token, i int) (text string, nextI int, matched bool, err error) {
	if !isChainable(tokens, i) {
		return "", 0, false, nil
	}

	var pieces []string
	j := i
	for isChainable(tokens, j) {
		if tokens[j].Kind == asmtoken.KindIdentifier {
			pieces = append(pieces, tokens[j].Lexeme)
			j++
		} else {
			close, err := matchingBrace(tokens, j)
			if err != nil {
				return "", 0, false, err
			}
			val, err := d.eval.Eval(tokens[j+1 : close])
			if err != nil {
				return "", 0, false, err
			}
			pieces = append(pieces, val.String())
			j = close + 1
		}
		if j >= len(tokens) || tokens[j].PrecededBySpace || !isChainable(tokens, j) {
			break
		}
	}

	if len(pieces) < 2 {
		return "", 0, false, nil
	}
	return strings.Join(pieces, ""), j, true, nil
}

func isChainable(tokens []asmtoken.Token, i int) bool {
	if i >= len(tokens) {
		return false
	}
	t := tokens[i]
	return t.Kind == asmtoken.KindIdentifier || (t.Kind == asmtoken.KindPunct && t.Lexeme == "{")
}

// evalBareBrace implements spec.md §4.6 rule 7: a top-level `{expr}` is
// evaluated and its textual rendering emitted. Strings keep their quotes
// unless the next token is `:`.
func (d *Driver) evalBareBrace(tokens []asmtoken.Token, i int) (string, int, error) {
	close, err := matchingBrace(tokens, i)
	if err != nil {
		return "", 0, err
	}
	val, err := d.eval.Eval(tokens[i+1 : close])
	if err != nil {
		return "", 0, err
	}
	next := close + 1

	if val.Kind == asmeval.KindString {
		if next < len(tokens) && tokens[next].Lexeme == ":" {
			return val.Str, next, nil
		}
		return `"` + val.Str + `"`, next, nil
	}
	return val.String(), next, nil
}

// interpolateString implements spec.md §4.6 rule 6: scan a string literal's
// raw text for balanced `{expr}` spans and replace each with its evaluated,
// unquoted rendering. The outer quotes are preserved. Embedded expressions
// are re-lexed with the package's scoped minilex, since the upstream lexer
// only ever hands the preprocessor one opaque string token.
func (d *Driver) interpolateString(lexeme string) (string, error) {
	inner := lexeme
	if len(inner) >= 2 && inner[0] == '"' && inner[len(inner)-1] == '"' {
		inner = inner[1 : len(inner)-1]
	}

	var sb strings.Builder
	i := 0
	for i < len(inner) {
		if inner[i] != '{' {
			sb.WriteByte(inner[i])
			i++
			continue
		}

		depth := 1
		j := i + 1
		for j < len(inner) && depth > 0 {
			switch inner[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		if depth != 0 {
			return "", ErrUnmatchedBrace
		}

		exprText := inner[i+1 : j-1]
		toks, err := lexExpr(exprText)
		if err != nil {
			return "", err
		}
		val, err := d.eval.Eval(toks)
		if err != nil {
			return "", err
		}
		sb.WriteString(val.String())
		i = j
	}

	return `"` + sb.String() + `"`, nil
}
