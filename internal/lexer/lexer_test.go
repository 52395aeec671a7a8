package lexer

import (
	"testing"

	"github.com/echo-lang/echoc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New([]byte(src))
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerEmptySource(t *testing.T) {
	toks := collect(t, "")
	require.Len(t, toks, 1)
	assert.Equal(t, token.EOF, toks[0].Kind)
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	toks := collect(t, "fn main auto x")
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []token.Kind{
		token.KeywordFn, token.Identifier, token.KeywordAuto, token.Identifier, token.EOF,
	}, kinds)
}

func TestLexerIntegerAndFloatLiterals(t *testing.T) {
	toks := collect(t, "42 3.14")
	require.Len(t, toks, 3)
	assert.Equal(t, token.IntegerLiteral, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, token.FloatLiteral, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Lexeme)
}

func TestLexerStringLiteralWithEscape(t *testing.T) {
	toks := collect(t, `"hi\n"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.StringLiteral, toks[0].Kind)
	assert.Equal(t, "hi\n", toks[0].Lexeme)
}

func TestLexerOperatorsIncludingTwoCharTokens(t *testing.T) {
	toks := collect(t, "-> :: == != <= >= && ||")
	kinds := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind != token.EOF {
			kinds = append(kinds, tok.Kind)
		}
	}
	assert.Equal(t, []token.Kind{
		token.Arrow, token.ColonColon, token.EqEq, token.BangEq,
		token.LtEq, token.GtEq, token.AmpAmp, token.PipePipe,
	}, kinds)
}

func TestLexerPreprocessorLine(t *testing.T) {
	toks := collect(t, "#include core::io as io\nfn")
	require.True(t, len(toks) >= 2)
	assert.Equal(t, token.Preprocessor, toks[0].Kind)
	assert.Equal(t, "#include core::io as io", toks[0].Lexeme)
	assert.Equal(t, token.KeywordFn, toks[1].Kind)
}

func TestLexerTracksLineAndColumn(t *testing.T) {
	toks := collect(t, "fn\nmain")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	l := New([]byte("fn main"))
	first := l.Peek()
	second := l.Peek()
	assert.Equal(t, first, second)
	assert.Equal(t, first, l.Next())
	assert.Equal(t, token.Identifier, l.Next().Kind)
}
