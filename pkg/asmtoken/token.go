// Package asmtoken defines the token stream contract produced by the
// upstream lexer and consumed by the preprocessor driver and the expression
// evaluator. Per spec.md §9's "error formatting with file:line:column" note,
// every token carries its source position so diagnostics can point at it.
package asmtoken

import "github.com/dgdev1024/g10/internal/diag"

// Kind classifies a Token.
type Kind int

const (
	KindEOF Kind = iota
	KindNewline
	KindIdentifier
	KindDirective   // a dot-prefixed word: .define, .if, .org, ...
	KindNumber      // integer or fixed-point literal
	KindString      // a quoted string literal, Lexeme includes the quotes
	KindPunct       // single-character punctuation: , : ( ) [ ] { } etc.
	KindOperator    // multi-character operators: **, <<, >>, ==, !=, <=, >=, &&, ||
	KindBackslash   // a lone backslash, meaningful only before a newline
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "eof"
	case KindNewline:
		return "newline"
	case KindIdentifier:
		return "identifier"
	case KindDirective:
		return "directive"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindPunct:
		return "punct"
	case KindOperator:
		return "operator"
	case KindBackslash:
		return "backslash"
	default:
		return "unknown"
	}
}

// Token is one lexical unit in the source token stream.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    diag.Position

	// PrecededBySpace records whether whitespace separated this token from
	// the previous one on the same line. The preprocessor driver needs this
	// to decide identifier/brace adjacency for interpolation (spec §4.6.5).
	PrecededBySpace bool
}

func New(kind Kind, lexeme string, pos diag.Position) Token {
	return Token{Kind: kind, Lexeme: lexeme, Pos: pos}
}

// Stream is a read-only cursor over a slice of Tokens, shared by the
// preprocessor driver and the evaluator so both walk the same contract.
type Stream struct {
	tokens []Token
	pos    int
}

func NewStream(tokens []Token) *Stream { return &Stream{tokens: tokens} }

func (s *Stream) AtEnd() bool { return s.pos >= len(s.tokens) }

// Peek returns the token offset ahead of the cursor without consuming it.
// Past the end of the stream it returns a synthetic EOF token positioned at
// the last token's location (or the zero position for an empty stream).
func (s *Stream) Peek(offset int) Token {
	i := s.pos + offset
	if i < 0 || i >= len(s.tokens) {
		if len(s.tokens) == 0 {
			return Token{Kind: KindEOF}
		}
		return Token{Kind: KindEOF, Pos: s.tokens[len(s.tokens)-1].Pos}
	}
	return s.tokens[i]
}

// Next returns the current token and advances the cursor by one.
func (s *Stream) Next() Token {
	t := s.Peek(0)
	if !s.AtEnd() {
		s.pos++
	}
	return t
}

// Pos returns the cursor's current index into the underlying slice, usable
// with Reset to rewind after speculative lookahead.
func (s *Stream) Pos() int { return s.pos }

// Reset rewinds the cursor to a previously observed index.
func (s *Stream) Reset(pos int) { s.pos = pos }
