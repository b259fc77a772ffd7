package preprocess

import (
	"fmt"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmtoken"
)

// lexExpr tokenizes a bare expression fragment pulled out of a string
// literal's `{…}` span. The full source lexer lives upstream of this
// package; this is a narrow, scoped stand-in covering exactly the token
// shapes spec.md §4.5's expression grammar needs (identifiers, numbers,
// strings, and the operator/punctuation set), used only for text that was
// never tokenized by the real lexer in the first place.
func lexExpr(src string) ([]asmtoken.Token, error) {
	var pos diag.Position
	var toks []asmtoken.Token
	i := 0
	n := len(src)

	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isIdentStart(c):
			start := i
			for i < n && isIdentCont(src[i]) {
				i++
			}
			toks = append(toks, asmtoken.New(asmtoken.KindIdentifier, src[start:i], pos))
		case isDigit(c):
			start := i
			switch {
			case c == '0' && i+1 < n && (src[i+1] == 'x' || src[i+1] == 'X'):
				i += 2
				for i < n && isHexDigit(src[i]) {
					i++
				}
			case c == '0' && i+1 < n && (src[i+1] == 'b' || src[i+1] == 'B'):
				i += 2
				for i < n && (src[i] == '0' || src[i] == '1') {
					i++
				}
			default:
				for i < n && isDigit(src[i]) {
					i++
				}
				if i < n && src[i] == '.' && i+1 < n && isDigit(src[i+1]) {
					i++
					for i < n && isDigit(src[i]) {
						i++
					}
				}
			}
			toks = append(toks, asmtoken.New(asmtoken.KindNumber, src[start:i], pos))
		case c == '"':
			start := i
			i++
			for i < n && src[i] != '"' {
				if src[i] == '\\' {
					i++
				}
				i++
			}
			if i >= n {
				return nil, fmt.Errorf("unterminated string in interpolated expression %q", src)
			}
			i++
			toks = append(toks, asmtoken.New(asmtoken.KindString, src[start:i], pos))
		default:
			if i+1 < n {
				two := src[i : i+2]
				switch two {
				case "**", "<<", ">>", "==", "!=", "<=", ">=", "&&", "||":
					toks = append(toks, asmtoken.New(asmtoken.KindOperator, two, pos))
					i += 2
					continue
				}
			}
			toks = append(toks, asmtoken.New(asmtoken.KindPunct, string(c), pos))
			i++
		}
	}

	return toks, nil
}

func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentCont(c byte) bool  { return isIdentStart(c) || isDigit(c) }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
