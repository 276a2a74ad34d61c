package syntax

import "github.com/hashicorp/hcl/v2"

// tokenKind enumerates the lexical token types of the scripting language.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNewline
	tokenIdent
	tokenString  // single-quoted string literal
	tokenDString // double-quoted string literal, may interpolate
	tokenNumber
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
	tokenComma
	tokenColon
	tokenAssign
	tokenSemi
	tokenDot
	tokenMinus
	tokenInvalid
)

var tokenNames = map[tokenKind]string{
	tokenEOF:      "end of file",
	tokenNewline:  "newline",
	tokenIdent:    "identifier",
	tokenString:   "string",
	tokenDString:  "string",
	tokenNumber:   "number",
	tokenLParen:   `"("`,
	tokenRParen:   `")"`,
	tokenLBrace:   `"{"`,
	tokenRBrace:   `"}"`,
	tokenLBracket: `"["`,
	tokenRBracket: `"]"`,
	tokenComma:    `","`,
	tokenColon:    `":"`,
	tokenAssign:   `"="`,
	tokenSemi:     `";"`,
	tokenDot:      `"."`,
	tokenMinus:    `"-"`,
	tokenInvalid:  "invalid token",
}

func (k tokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return "unknown token"
}

// token is a single lexical unit with its source range.
type token struct {
	Kind tokenKind
	// Text is the decoded value for strings and the raw spelling for
	// everything else.
	Text string
	// Raw is the verbatim source spelling, quotes included, for string
	// tokens. Interpolated strings are carried through the model verbatim.
	Raw string
	Rng hcl.Range
}
