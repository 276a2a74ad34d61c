package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []token {
	t.Helper()
	toks, diags := newLexer("test.jenkinsfile", []byte(src)).lex()
	require.False(t, diags.HasErrors(), "unexpected lex errors: %s", diags.Error())
	require.NotEmpty(t, toks)
	require.Equal(t, tokenEOF, toks[len(toks)-1].Kind)
	return toks[:len(toks)-1]
}

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexerTokens(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []tokenKind
	}{
		{
			name:     "call with string",
			src:      "echo 'hello'",
			expected: []tokenKind{tokenIdent, tokenString},
		},
		{
			name:     "parenthesized call",
			src:      "sh('make')",
			expected: []tokenKind{tokenIdent, tokenLParen, tokenString, tokenRParen},
		},
		{
			name:     "assignment",
			src:      "FOO = 'bar'",
			expected: []tokenKind{tokenIdent, tokenAssign, tokenString},
		},
		{
			name:     "number and bool idents",
			src:      "retry(3)",
			expected: []tokenKind{tokenIdent, tokenLParen, tokenNumber, tokenRParen},
		},
		{
			name:     "newline separates statements",
			src:      "a\nb",
			expected: []tokenKind{tokenIdent, tokenNewline, tokenIdent},
		},
		{
			name:     "line comment swallowed",
			src:      "a // trailing\nb",
			expected: []tokenKind{tokenIdent, tokenNewline, tokenIdent},
		},
		{
			name:     "block comment swallowed",
			src:      "a /* x\ny */ b",
			expected: []tokenKind{tokenIdent, tokenIdent},
		},
		{
			name:     "double quoted string",
			src:      `echo "hi ${name}"`,
			expected: []tokenKind{tokenIdent, tokenDString},
		},
		{
			name:     "braces and colon",
			src:      "steps { a: b }",
			expected: []tokenKind{tokenIdent, tokenLBrace, tokenIdent, tokenColon, tokenIdent, tokenRBrace},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks := lexAll(t, tc.src)
			assert.Equal(t, tc.expected, kinds(toks))
		})
	}
}

func TestLexerStringDecoding(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected string
	}{
		{name: "plain", src: `'hello'`, expected: "hello"},
		{name: "escaped quote", src: `'it\'s'`, expected: "it's"},
		{name: "newline escape", src: `'a\nb'`, expected: "a\nb"},
		{name: "escaped dollar", src: `"cost \$5"`, expected: "cost $5"},
		{name: "tab escape", src: `'a\tb'`, expected: "a\tb"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks := lexAll(t, tc.src)
			require.Len(t, toks, 1)
			assert.Equal(t, tc.expected, toks[0].Text)
			assert.Equal(t, tc.src, toks[0].Raw)
		})
	}
}

func TestLexerPositions(t *testing.T) {
	toks := lexAll(t, "a\n  bb")
	require.Len(t, toks, 3)

	assert.Equal(t, 1, toks[0].Rng.Start.Line)
	assert.Equal(t, 1, toks[0].Rng.Start.Column)

	bb := toks[2]
	assert.Equal(t, 2, bb.Rng.Start.Line)
	assert.Equal(t, 3, bb.Rng.Start.Column)
	assert.Equal(t, 5, bb.Rng.End.Column)
}

func TestLexerUnterminatedString(t *testing.T) {
	toks, diags := newLexer("test.jenkinsfile", []byte("'oops")).lex()
	require.True(t, diags.HasErrors())
	require.NotEmpty(t, toks)
	assert.Equal(t, tokenString, toks[0].Kind)
}
