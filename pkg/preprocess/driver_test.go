package preprocess_test

import (
	"testing"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmtoken"
	"github.com/dgdev1024/g10/pkg/preprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pos diag.Position

func tok(kind asmtoken.Kind, lexeme string) asmtoken.Token { return asmtoken.New(kind, lexeme, pos) }
func ident(s string) asmtoken.Token                        { return tok(asmtoken.KindIdentifier, s) }
func num(s string) asmtoken.Token                          { return tok(asmtoken.KindNumber, s) }
func str(s string) asmtoken.Token                          { return tok(asmtoken.KindString, s) }
func punct(s string) asmtoken.Token                        { return tok(asmtoken.KindPunct, s) }
func operator(s string) asmtoken.Token                      { return tok(asmtoken.KindOperator, s) }
func directive(s string) asmtoken.Token                     { return tok(asmtoken.KindDirective, s) }
func nl() asmtoken.Token                                    { return tok(asmtoken.KindNewline, "\n") }

func TestDefineAndMacroExpansion(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".define"), ident("TWO"), num("2"), nl(),
		ident("TWO"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestDefineRedefinitionIsError(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".define"), ident("X"), num("1"), nl(),
		directive(".define"), ident("X"), num("2"), nl(),
	}
	_, err := preprocess.New().Process(tokens)
	require.ErrorIs(t, err, preprocess.ErrMacroRedefinition)
}

func TestUndefWarnsOnAbsentMacro(t *testing.T) {
	tokens := []asmtoken.Token{directive(".undef"), ident("NOPE"), nl()}
	d := preprocess.New()
	out, err := d.Process(tokens)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Len(t, d.Warnings, 1)
}

func TestConditionalTakesIfBranch(t *testing.T) {
	// The S4-style scenario: `.define X 1 .if X==1 ld l0,$aa .else ld
	// l0,$bb .endif` only emits the if-branch.
	tokens := []asmtoken.Token{
		directive(".define"), ident("X"), num("1"), nl(),
		directive(".if"), ident("X"), operator("=="), num("1"), nl(),
		ident("A"), nl(),
		directive(".else"), nl(),
		ident("B"), nl(),
		directive(".endif"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "A\n", out)
}

func TestConditionalElifBranchTaken(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".define"), ident("X"), num("2"), nl(),
		directive(".if"), ident("X"), operator("=="), num("1"), nl(),
		ident("A"), nl(),
		directive(".elif"), ident("X"), operator("=="), num("2"), nl(),
		ident("B"), nl(),
		directive(".else"), nl(),
		ident("C"), nl(),
		directive(".endif"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "B\n", out)
}

func TestElifAfterElseIsError(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".if"), num("0"), nl(),
		directive(".else"), nl(),
		directive(".elif"), num("1"), nl(),
		directive(".endif"), nl(),
	}
	_, err := preprocess.New().Process(tokens)
	require.ErrorIs(t, err, preprocess.ErrElseAfterElse)
}

func TestRepeatWithLoopVariable(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".repeat"), num("3"), punct(","), ident("I"), nl(),
		ident("I"), nl(),
		directive(".endrepeat"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestForLoopAscending(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".for"), ident("I"), punct(","), num("0"), punct(","), num("3"), nl(),
		ident("I"), nl(),
		directive(".endfor"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestForLoopStepZeroIsError(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".for"), ident("I"), punct(","), num("0"), punct(","), num("3"), punct(","), num("0"), nl(),
		ident("I"), nl(),
		directive(".endfor"), nl(),
	}
	_, err := preprocess.New().Process(tokens)
	require.Error(t, err)
}

func TestForLoopDirectionMismatchRunsZeroTimes(t *testing.T) {
	// START > END with a positive STEP: zero iterations, not an error.
	tokens := []asmtoken.Token{
		directive(".for"), ident("I"), punct(","), num("3"), punct(","), num("0"), nl(),
		ident("I"), nl(),
		directive(".endfor"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWhileHardIterationCapAborts(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".while"), num("1"), nl(),
		nl(),
		directive(".endwhile"), nl(),
	}
	_, err := preprocess.New().Process(tokens)
	require.ErrorIs(t, err, preprocess.ErrInfiniteLoop)
}

func TestBreakInsideRepeatStopsLoopAndSkipsRemainder(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".repeat"), num("5"), punct(","), ident("I"), nl(),
		directive(".if"), ident("I"), operator("=="), num("2"), nl(),
		directive(".break"), nl(),
		directive(".endif"), nl(),
		ident("I"), nl(),
		directive(".endrepeat"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n", out)
}

func TestContinueInsideForSkipsOneIteration(t *testing.T) {
	tokens := []asmtoken.Token{
		directive(".for"), ident("I"), punct(","), num("0"), punct(","), num("3"), nl(),
		directive(".if"), ident("I"), operator("=="), num("1"), nl(),
		directive(".continue"), nl(),
		directive(".endif"), nl(),
		ident("I"), nl(),
		directive(".endfor"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "0\n2\n", out)
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	tokens := []asmtoken.Token{directive(".break"), nl()}
	_, err := preprocess.New().Process(tokens)
	require.ErrorIs(t, err, preprocess.ErrBreakOutsideLoop)
}

func TestIdentifierBraceInterpolation(t *testing.T) {
	tokens := []asmtoken.Token{
		ident("label"), punct("{"), num("1"), operator("+"), num("1"), punct("}"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "label2\n", out)
}

func TestBareBraceKeepsStringQuotesByDefault(t *testing.T) {
	tokens := []asmtoken.Token{punct("{"), str(`"hi"`), punct("}"), nl()}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "\"hi\"\n", out)
}

func TestBareBraceDropsQuotesBeforeColon(t *testing.T) {
	tokens := []asmtoken.Token{punct("{"), str(`"hi"`), punct("}"), punct(":"), nl()}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "hi:\n", out)
}

func TestStringInterpolation(t *testing.T) {
	tokens := []asmtoken.Token{str(`"count={1+1}!"`), nl()}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "\"count=2!\"\n", out)
}

func TestLineSpliceDiscardsBackslashNewline(t *testing.T) {
	tokens := []asmtoken.Token{
		ident("A"), tok(asmtoken.KindBackslash, "\\"), nl(),
		ident("B"), nl(),
	}
	out, err := preprocess.New().Process(tokens)
	require.NoError(t, err)
	assert.Equal(t, "AB\n", out)
}
