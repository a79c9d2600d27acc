package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swordsmanluke/weave/lang/scanner"
	"github.com/swordsmanluke/weave/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := scanner.New("test.weave", src)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestScanPunctuationAndOperators(t *testing.T) {
	src := `( ) { } , ; ^ + - / * ** *> ! != = == < <= > >= && &> || |>`
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.SEMI, token.CARET, token.PLUS, token.MINUS, token.SLASH,
		token.STAR, token.STARSTAR, token.STARGT, token.BANG, token.BANGEQ,
		token.EQ, token.EQEQ, token.LT, token.LE, token.GT, token.GE,
		token.AMPAMP, token.AMPGT, token.PIPEPIPE, token.PIPEGT, token.EOF,
	}
	toks := scanAll(t, src)
	require.Equal(t, want, kinds(toks))
}

func TestScanKeywordsAndIdents(t *testing.T) {
	src := `true false null if else while fn return puts and or counter x1`
	want := []token.Kind{
		token.TRUE, token.FALSE, token.NULL, token.IF, token.ELSE,
		token.WHILE, token.FN, token.RETURN, token.PUTS, token.AND,
		token.OR, token.IDENT, token.IDENT, token.EOF,
	}
	toks := scanAll(t, src)
	require.Equal(t, want, kinds(toks))
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, `0 42 3.14 100.0`)
	require.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
	require.Equal(t, 0.0, toks[0].Num)
	require.Equal(t, 42.0, toks[1].Num)
	require.Equal(t, 3.14, toks[2].Num)
	require.Equal(t, 100.0, toks[3].Num)
}

func TestScanStrings(t *testing.T) {
	toks := scanAll(t, `"hello" 'world'`)
	require.Equal(t, []token.Kind{token.STRING, token.STRING, token.EOF}, kinds(toks))
	require.Equal(t, "hello", toks[0].Str)
	require.Equal(t, "world", toks[1].Str)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanStringNoEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `a\nb`, toks[0].Str)
}

func TestScanCommentsAndWhitespace(t *testing.T) {
	src := "x = 1 # this is a comment\ny = 2"
	toks := scanAll(t, src)
	want := []token.Kind{
		token.IDENT, token.EQ, token.NUMBER,
		token.IDENT, token.EQ, token.NUMBER,
		token.EOF,
	}
	require.Equal(t, want, kinds(toks))
}

func TestScanLineTracking(t *testing.T) {
	src := "x\ny\nz"
	toks := scanAll(t, src)
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 2, toks[1].Line)
	require.Equal(t, 3, toks[2].Line)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	toks := scanAll(t, `@`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanEmptySource(t *testing.T) {
	toks := scanAll(t, ``)
	require.Equal(t, []token.Kind{token.EOF}, kinds(toks))
}

func TestScanRepeatedEOF(t *testing.T) {
	s := scanner.New("", "")
	require.Equal(t, token.EOF, s.Scan().Kind)
	require.Equal(t, token.EOF, s.Scan().Kind)
}
