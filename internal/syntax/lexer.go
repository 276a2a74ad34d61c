package syntax

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// lexer walks raw source bytes and produces tokens. It tracks line, column
// and byte offset so every token carries an exact hcl.Range.
type lexer struct {
	filename string
	src      []byte
	pos      hcl.Pos
	diags    hcl.Diagnostics
}

func newLexer(filename string, src []byte) *lexer {
	return &lexer{
		filename: filename,
		src:      src,
		pos:      hcl.Pos{Line: 1, Column: 1, Byte: 0},
	}
}

func (l *lexer) errorf(rng hcl.Range, format string, args ...any) {
	l.diags = append(l.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid token",
		Detail:   fmt.Sprintf(format, args...),
		Subject:  &rng,
	})
}

func (l *lexer) eof() bool { return l.pos.Byte >= len(l.src) }

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos.Byte]
}

func (l *lexer) peekAt(n int) byte {
	if l.pos.Byte+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos.Byte+n]
}

// advance consumes one byte, maintaining line/column bookkeeping.
func (l *lexer) advance() byte {
	b := l.src[l.pos.Byte]
	l.pos.Byte++
	if b == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
	return b
}

func (l *lexer) rangeFrom(start hcl.Pos) hcl.Range {
	return hcl.Range{Filename: l.filename, Start: start, End: l.pos}
}

// lex tokenizes the whole input. It never fails outright; unrecognized bytes
// become tokenInvalid tokens with an attached diagnostic.
func (l *lexer) lex() ([]token, hcl.Diagnostics) {
	var toks []token
	for {
		tok, done := l.next()
		toks = append(toks, tok)
		if done {
			break
		}
	}
	return toks, l.diags
}

func (l *lexer) next() (token, bool) {
	l.skipSpacesAndComments()
	start := l.pos
	if l.eof() {
		return token{Kind: tokenEOF, Rng: l.rangeFrom(start)}, true
	}

	b := l.peek()
	switch {
	case b == '\n':
		l.advance()
		return token{Kind: tokenNewline, Text: "\n", Rng: l.rangeFrom(start)}, false
	case b == '\r':
		l.advance()
		if l.peek() == '\n' {
			l.advance()
		}
		return token{Kind: tokenNewline, Text: "\n", Rng: l.rangeFrom(start)}, false
	case b == '\'' || b == '"':
		return l.lexString(b), false
	case b >= '0' && b <= '9':
		return l.lexNumber(), false
	case isIdentStart(b):
		return l.lexIdent(), false
	}

	punct := map[byte]tokenKind{
		'(': tokenLParen, ')': tokenRParen,
		'{': tokenLBrace, '}': tokenRBrace,
		'[': tokenLBracket, ']': tokenRBracket,
		',': tokenComma, ':': tokenColon,
		'=': tokenAssign, ';': tokenSemi,
		'.': tokenDot, '-': tokenMinus,
	}
	if kind, ok := punct[b]; ok {
		l.advance()
		return token{Kind: kind, Text: string(b), Rng: l.rangeFrom(start)}, false
	}

	// Anything else (operators and the like) can legitimately occur inside
	// embedded script bodies, so it lexes without complaint. The parser
	// reports it if it shows up where structured syntax is expected.
	l.advance()
	return token{Kind: tokenInvalid, Text: string(b), Rng: l.rangeFrom(start)}, false
}

// skipSpacesAndComments consumes horizontal whitespace, line comments and
// block comments. Newlines are significant and left for next to report.
func (l *lexer) skipSpacesAndComments() {
	for !l.eof() {
		b := l.peek()
		switch {
		case b == ' ' || b == '\t':
			l.advance()
		case b == '/' && l.peekAt(1) == '/':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
		case b == '/' && l.peekAt(1) == '*':
			start := l.pos
			l.advance()
			l.advance()
			closed := false
			for !l.eof() {
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.errorf(l.rangeFrom(start), "Unterminated block comment.")
			}
		default:
			return
		}
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func (l *lexer) lexIdent() token {
	start := l.pos
	var sb strings.Builder
	for !l.eof() && isIdentPart(l.peek()) {
		sb.WriteByte(l.advance())
	}
	return token{Kind: tokenIdent, Text: sb.String(), Rng: l.rangeFrom(start)}
}

func (l *lexer) lexNumber() token {
	start := l.pos
	var sb strings.Builder
	for !l.eof() && l.peek() >= '0' && l.peek() <= '9' {
		sb.WriteByte(l.advance())
	}
	if l.peek() == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
		sb.WriteByte(l.advance())
		for !l.eof() && l.peek() >= '0' && l.peek() <= '9' {
			sb.WriteByte(l.advance())
		}
	}
	return token{Kind: tokenNumber, Text: sb.String(), Rng: l.rangeFrom(start)}
}

// lexString handles both quote styles. The decoded value lands in Text and
// the verbatim spelling, quotes included, in Raw. Double-quoted strings keep
// interpolation markers untouched; whether the string actually interpolates
// is decided by the parser.
func (l *lexer) lexString(quote byte) token {
	start := l.pos
	l.advance()
	var val strings.Builder
	terminated := false
	for !l.eof() {
		b := l.peek()
		if b == quote {
			l.advance()
			terminated = true
			break
		}
		if b == '\n' {
			break
		}
		if b == '\\' {
			l.advance()
			if l.eof() {
				break
			}
			esc := l.advance()
			switch esc {
			case 'n':
				val.WriteByte('\n')
			case 't':
				val.WriteByte('\t')
			case 'r':
				val.WriteByte('\r')
			case '\\', '\'', '"', '$':
				val.WriteByte(esc)
			default:
				val.WriteByte('\\')
				val.WriteByte(esc)
			}
			continue
		}
		val.WriteByte(l.advance())
	}
	rng := l.rangeFrom(start)
	if !terminated {
		l.errorf(rng, "Unterminated string literal.")
	}
	kind := tokenString
	if quote == '"' {
		kind = tokenDString
	}
	return token{
		Kind: kind,
		Text: val.String(),
		Raw:  string(l.src[start.Byte:l.pos.Byte]),
		Rng:  rng,
	}
}
