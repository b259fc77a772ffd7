package asmeval_test

import (
	"testing"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmeval"
	"github.com/dgdev1024/g10/pkg/asmtoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnv is a minimal Environment backed by two maps, standing in for the
// preprocessor's macro table and codegen's `.let`/`.const` bindings.
type fakeEnv struct {
	macros    map[string][]asmtoken.Token
	variables map[string]asmeval.Value
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{macros: map[string][]asmtoken.Token{}, variables: map[string]asmeval.Value{}}
}

func (e *fakeEnv) LookupMacro(name string) ([]asmtoken.Token, bool) {
	t, ok := e.macros[name]
	return t, ok
}

func (e *fakeEnv) LookupVariable(name string) (asmeval.Value, bool) {
	v, ok := e.variables[name]
	return v, ok
}

var pos = diag.Position{File: "test.asm", Line: 1, Column: 1}

func num(lexeme string) asmtoken.Token { return asmtoken.New(asmtoken.KindNumber, lexeme, pos) }
func str(lexeme string) asmtoken.Token { return asmtoken.New(asmtoken.KindString, lexeme, pos) }
func ident(name string) asmtoken.Token { return asmtoken.New(asmtoken.KindIdentifier, name, pos) }
func op(lexeme string) asmtoken.Token {
	kind := asmtoken.KindPunct
	switch lexeme {
	case "**", "<<", ">>", "==", "!=", "<=", ">=", "&&", "||":
		kind = asmtoken.KindOperator
	}
	return asmtoken.New(kind, lexeme, pos)
}

func TestPrecedenceMultiplicationBeforeAddition(t *testing.T) {
	// 2 + 3 * 4 == 14
	tokens := []asmtoken.Token{num("2"), op("+"), num("3"), op("*"), num("4")}
	v, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.NoError(t, err)
	i, err := v.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, 14, i)
}

func TestPowerIsRightAssociative(t *testing.T) {
	// 2 ** 3 ** 2 == 2 ** (3 ** 2) == 512, not (2**3)**2 == 64
	tokens := []asmtoken.Token{num("2"), op("**"), num("3"), op("**"), num("2")}
	v, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.NoError(t, err)
	i, err := v.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, 512, i)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	// (2 + 3) * 4 == 20
	tokens := []asmtoken.Token{op("("), num("2"), op("+"), num("3"), op(")"), op("*"), num("4")}
	v, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.NoError(t, err)
	i, err := v.AsInt()
	require.NoError(t, err)
	assert.EqualValues(t, 20, i)
}

func TestHexAndBinaryLiterals(t *testing.T) {
	v, err := asmeval.New(newFakeEnv()).Eval([]asmtoken.Token{num("0xFF")})
	require.NoError(t, err)
	i, _ := v.AsInt()
	assert.EqualValues(t, 0xFF, i)

	v, err = asmeval.New(newFakeEnv()).Eval([]asmtoken.Token{num("0b1010")})
	require.NoError(t, err)
	i, _ = v.AsInt()
	assert.EqualValues(t, 0b1010, i)
}

func TestStringConcatenation(t *testing.T) {
	tokens := []asmtoken.Token{str(`"foo"`), op("+"), str(`"bar"`)}
	v, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.NoError(t, err)
	assert.Equal(t, "foobar", v.Str)
}

func TestStringLexicographicComparison(t *testing.T) {
	tokens := []asmtoken.Token{str(`"abc"`), op("<"), str(`"abd"`)}
	v, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.NoError(t, err)
	i, _ := v.AsInt()
	assert.EqualValues(t, 1, i)
}

func TestStringPlusIntIsTypeMismatch(t *testing.T) {
	tokens := []asmtoken.Token{str(`"abc"`), op("+"), num("1")}
	_, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.ErrorIs(t, err, asmeval.ErrTypeMismatch)
}

func TestDivideByZeroIsHardError(t *testing.T) {
	tokens := []asmtoken.Token{num("1"), op("/"), num("0")}
	_, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.ErrorIs(t, err, asmeval.ErrDivideByZero)
}

func TestModuloByZeroIsHardError(t *testing.T) {
	tokens := []asmtoken.Token{num("1"), op("%"), num("0")}
	_, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.ErrorIs(t, err, asmeval.ErrDivideByZero)
}

func TestNegativeExponentIsHardError(t *testing.T) {
	tokens := []asmtoken.Token{num("2"), op("**"), num("-1")}
	_, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.ErrorIs(t, err, asmeval.ErrNegativeExponent)
}

func TestShiftOutOfRangeIsHardError(t *testing.T) {
	tokens := []asmtoken.Token{num("1"), op("<<"), num("64")}
	_, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.ErrorIs(t, err, asmeval.ErrShiftOutOfRange)
}

func TestUndefinedIdentifierIsHardError(t *testing.T) {
	tokens := []asmtoken.Token{ident("NOPE")}
	_, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.ErrorIs(t, err, asmeval.ErrUndefinedIdentifier)
}

func TestVariableLookupResolvesIdentifier(t *testing.T) {
	env := newFakeEnv()
	env.variables["FOO"] = asmeval.IntValue(42)
	v, err := asmeval.New(env).Eval([]asmtoken.Token{ident("FOO"), op("+"), num("1")})
	require.NoError(t, err)
	i, _ := v.AsInt()
	assert.EqualValues(t, 43, i)
}

func TestMacroLookupSubstitutesAndReevaluates(t *testing.T) {
	env := newFakeEnv()
	// .define DOUBLE 2 * 3 -- expands textually, so referencing DOUBLE
	// evaluates "2 * 3" in place.
	env.macros["DOUBLE"] = []asmtoken.Token{num("2"), op("*"), num("3")}
	v, err := asmeval.New(env).Eval([]asmtoken.Token{ident("DOUBLE"), op("+"), num("1")})
	require.NoError(t, err)
	i, _ := v.AsInt()
	assert.EqualValues(t, 7, i)
}

func TestUnaryOperators(t *testing.T) {
	v, err := asmeval.New(newFakeEnv()).Eval([]asmtoken.Token{op("-"), num("5")})
	require.NoError(t, err)
	i, _ := v.AsInt()
	assert.EqualValues(t, -5, i)

	v, err = asmeval.New(newFakeEnv()).Eval([]asmtoken.Token{op("~"), num("0")})
	require.NoError(t, err)
	i, _ = v.AsInt()
	assert.EqualValues(t, -1, i)

	v, err = asmeval.New(newFakeEnv()).Eval([]asmtoken.Token{op("!"), num("0")})
	require.NoError(t, err)
	i, _ = v.AsInt()
	assert.EqualValues(t, 1, i)
}

func TestLogicalAndOr(t *testing.T) {
	v, err := asmeval.New(newFakeEnv()).Eval([]asmtoken.Token{num("1"), op("&&"), num("0")})
	require.NoError(t, err)
	i, _ := v.AsInt()
	assert.EqualValues(t, 0, i)

	v, err = asmeval.New(newFakeEnv()).Eval([]asmtoken.Token{num("0"), op("||"), num("5")})
	require.NoError(t, err)
	i, _ = v.AsInt()
	assert.EqualValues(t, 1, i)
}

func TestTrailingTokensAreUnexpectedTokenError(t *testing.T) {
	tokens := []asmtoken.Token{num("1"), num("2")}
	_, err := asmeval.New(newFakeEnv()).Eval(tokens)
	require.ErrorIs(t, err, asmeval.ErrUnexpectedToken)
}
