package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Parse lexes and parses src into a Module. The returned diagnostics may
// contain errors while still yielding a partial module; the parser resyncs
// at statement boundaries so one bad line does not hide the rest.
func Parse(filename string, src []byte) (*Module, *File, hcl.Diagnostics) {
	toks, diags := newLexer(filename, src).lex()
	p := &parser{
		file:  &File{Filename: filename, Src: src},
		toks:  toks,
		diags: diags,
	}
	mod := p.parseModule()
	return mod, p.file, p.diags
}

type parser struct {
	file  *File
	toks  []token
	pos   int
	diags hcl.Diagnostics
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) peek(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) bump() token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(rng hcl.Range, summary, format string, args ...any) {
	p.diags = append(p.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  &rng,
	})
}

func (p *parser) skipSeparators() {
	for p.cur().Kind == tokenNewline || p.cur().Kind == tokenSemi {
		p.bump()
	}
}

func (p *parser) skipNewlines() {
	for p.cur().Kind == tokenNewline {
		p.bump()
	}
}

// resync discards tokens up to the next statement boundary after an error.
func (p *parser) resync() {
	depth := 0
	for {
		switch p.cur().Kind {
		case tokenEOF:
			return
		case tokenNewline, tokenSemi:
			if depth == 0 {
				return
			}
			p.bump()
		case tokenLParen, tokenLBrace, tokenLBracket:
			depth++
			p.bump()
		case tokenRParen, tokenRBracket:
			if depth > 0 {
				depth--
			}
			p.bump()
		case tokenRBrace:
			if depth == 0 {
				return
			}
			depth--
			p.bump()
		default:
			p.bump()
		}
	}
}

func (p *parser) parseModule() *Module {
	start := p.cur().Rng
	stmts := p.parseStmtList(tokenEOF)
	end := p.cur().Rng
	return &Module{Stmts: stmts, Rng: hcl.RangeBetween(start, end)}
}

// parseStmtList parses statements until the terminator token (or EOF) is
// reached. The terminator itself is not consumed.
func (p *parser) parseStmtList(term tokenKind) []Stmt {
	var stmts []Stmt
	for {
		p.skipSeparators()
		if p.cur().Kind == term || p.cur().Kind == tokenEOF {
			return stmts
		}
		if stmt := p.parseStmt(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
}

func (p *parser) parseStmt() Stmt {
	tok := p.cur()
	if tok.Kind != tokenIdent {
		p.errorf(tok.Rng, "Expected a statement", "Statements must start with an identifier, got %s.", tok.Kind)
		p.resync()
		return nil
	}
	name := p.bump()

	switch p.cur().Kind {
	case tokenAssign:
		p.bump()
		p.skipNewlines()
		val := p.parseExpr()
		return &Assign{
			Name:    name.Text,
			NameRng: name.Rng,
			Value:   val,
			Rng:     hcl.RangeBetween(name.Rng, val.Range()),
		}
	default:
		return &ExprStmt{X: p.parseCallAfterName(name, true)}
	}
}

// opaqueBlocks are call names whose block bodies embed foreign code. Their
// closures are captured by range only, never statement-parsed, so arbitrary
// code inside them cannot produce syntax findings.
var opaqueBlocks = map[string]bool{
	"script":     true,
	"expression": true,
}

// parseCallAfterName builds the expression introduced by an identifier. In
// statement position the paren-free command form (`echo 'hi'`) is allowed;
// in expression position a bare identifier is a variable reference.
func (p *parser) parseCallAfterName(name token, stmtPos bool) Expr {
	call := &MethodCall{Name: name.Text, NameRng: name.Rng, Rng: name.Rng}

	switch p.cur().Kind {
	case tokenLParen:
		endRng := p.parseParenArgs(call)
		call.Rng = hcl.RangeBetween(name.Rng, endRng)
		if p.cur().Kind == tokenLBrace {
			cl := p.parseBlockFor(name.Text)
			call.Args = append(call.Args, Arg{Value: cl})
			call.Rng = hcl.RangeBetween(name.Rng, cl.Rng)
		}
		return call
	case tokenLBrace:
		cl := p.parseBlockFor(name.Text)
		call.Args = append(call.Args, Arg{Value: cl})
		call.Rng = hcl.RangeBetween(name.Rng, cl.Rng)
		return call
	case tokenDot:
		return p.parseDotted(name, stmtPos)
	}

	if stmtPos && startsExpr(p.cur().Kind) {
		p.parseCommandArgs(call)
		if n := len(call.Args); n > 0 {
			call.Rng = hcl.RangeBetween(name.Rng, call.Args[n-1].Value.Range())
		}
		return call
	}

	return &VarRef{Name: name.Text, Rng: name.Rng}
}

// parseDotted consumes a dotted reference like a.b.c, optionally followed by
// a call. Dotted names are kept whole; the model lowers them to placeholders.
func (p *parser) parseDotted(first token, stmtPos bool) Expr {
	full := first.Text
	rng := first.Rng
	for p.cur().Kind == tokenDot && p.peek(1).Kind == tokenIdent {
		p.bump()
		part := p.bump()
		full += "." + part.Text
		rng = hcl.RangeBetween(rng, part.Rng)
	}
	if p.cur().Kind == tokenLParen {
		call := &MethodCall{Name: full, NameRng: rng, Rng: rng}
		endRng := p.parseParenArgs(call)
		call.Rng = hcl.RangeBetween(rng, endRng)
		return call
	}
	return &VarRef{Name: full, Rng: rng}
}

// startsExpr reports whether a token can open an expression, used to decide
// if an identifier statement continues as a command-form call.
func startsExpr(k tokenKind) bool {
	switch k {
	case tokenString, tokenDString, tokenNumber, tokenIdent, tokenLBracket, tokenMinus:
		return true
	}
	return false
}

// parseParenArgs parses `( arg, ... )` into call and returns the closing
// paren's range.
func (p *parser) parseParenArgs(call *MethodCall) hcl.Range {
	open := p.bump()
	p.skipNewlines()
	if p.cur().Kind == tokenRParen {
		return p.bump().Rng
	}
	for {
		call.Args = append(call.Args, p.parseArg())
		p.skipNewlines()
		if p.cur().Kind == tokenComma {
			p.bump()
			p.skipNewlines()
			continue
		}
		break
	}
	if p.cur().Kind != tokenRParen {
		p.errorf(p.cur().Rng, "Unbalanced parentheses", "Expected \")\" to close the argument list opened at %s.", open.Rng.String())
		return p.cur().Rng
	}
	return p.bump().Rng
}

// parseCommandArgs parses the paren-free argument list of a command-form
// call, which extends to the end of the line.
func (p *parser) parseCommandArgs(call *MethodCall) {
	for {
		call.Args = append(call.Args, p.parseArg())
		if p.cur().Kind == tokenComma {
			p.bump()
			p.skipNewlines()
			continue
		}
		return
	}
}

// parseArg parses one argument, named when a `key:` prefix is present. Keys
// may be identifiers or quoted strings (parallel branch names are often
// quoted).
func (p *parser) parseArg() Arg {
	k := p.cur().Kind
	if (k == tokenIdent || k == tokenString || k == tokenDString) && p.peek(1).Kind == tokenColon {
		name := p.bump()
		p.bump()
		p.skipNewlines()
		return Arg{Name: name.Text, NameRng: name.Rng, Value: p.parseExpr()}
	}
	return Arg{Value: p.parseExpr()}
}

func (p *parser) parseExpr() Expr {
	tok := p.cur()
	switch tok.Kind {
	case tokenString:
		p.bump()
		return &Literal{Value: cty.StringVal(tok.Text), Rng: tok.Rng}
	case tokenDString:
		p.bump()
		if interpolates(tok.Raw) {
			return &InterpolatedString{Raw: tok.Raw, Rng: tok.Rng}
		}
		return &Literal{Value: cty.StringVal(tok.Text), Rng: tok.Rng}
	case tokenNumber:
		p.bump()
		return numberLiteral(tok, false)
	case tokenMinus:
		p.bump()
		if p.cur().Kind != tokenNumber {
			p.errorf(tok.Rng, "Expected an expression", "\"-\" must be followed by a number.")
			return &Literal{Value: cty.NullVal(cty.DynamicPseudoType), Rng: tok.Rng}
		}
		num := p.bump()
		lit := numberLiteral(num, true)
		lit.Rng = hcl.RangeBetween(tok.Rng, num.Rng)
		return lit
	case tokenIdent:
		p.bump()
		switch tok.Text {
		case "true":
			return &Literal{Value: cty.True, Rng: tok.Rng}
		case "false":
			return &Literal{Value: cty.False, Rng: tok.Rng}
		}
		return p.parseCallAfterName(tok, false)
	case tokenLBracket:
		return p.parseListOrMap()
	case tokenLBrace:
		return p.parseClosure()
	}
	p.errorf(tok.Rng, "Expected an expression", "Got %s instead.", tok.Kind)
	p.bump()
	return &Literal{Value: cty.NullVal(cty.DynamicPseudoType), Rng: tok.Rng}
}

func numberLiteral(tok token, negative bool) *Literal {
	text := tok.Text
	if negative {
		text = "-" + text
	}
	if !strings.Contains(text, ".") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return &Literal{Value: cty.NumberIntVal(i), Rng: tok.Rng}
		}
	}
	f, _ := strconv.ParseFloat(text, 64)
	return &Literal{Value: cty.NumberFloatVal(f), Rng: tok.Rng}
}

// interpolates reports whether a double-quoted string's raw spelling
// contains an unescaped `$`.
func interpolates(raw string) bool {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '$':
			return true
		}
	}
	return false
}

// parseListOrMap parses a bracketed literal. `[:]` is an empty map, a
// leading `key:` selects map form, anything else is a list.
func (p *parser) parseListOrMap() Expr {
	open := p.bump()
	p.skipNewlines()

	if p.cur().Kind == tokenColon && p.peek(1).Kind == tokenRBracket {
		p.bump()
		closeTok := p.bump()
		return &MapLit{Rng: hcl.RangeBetween(open.Rng, closeTok.Rng)}
	}
	if p.cur().Kind == tokenRBracket {
		closeTok := p.bump()
		return &ListLit{Rng: hcl.RangeBetween(open.Rng, closeTok.Rng)}
	}

	k := p.cur().Kind
	isMap := (k == tokenIdent || k == tokenString || k == tokenDString) && p.peek(1).Kind == tokenColon

	if isMap {
		m := &MapLit{}
		for {
			keyTok := p.bump()
			if p.cur().Kind != tokenColon {
				p.errorf(p.cur().Rng, "Malformed map literal", "Expected \":\" after map key %q.", keyTok.Text)
				p.resync()
				break
			}
			p.bump()
			p.skipNewlines()
			val := p.parseExpr()
			m.Entries = append(m.Entries, MapEntry{
				Key:   &Literal{Value: cty.StringVal(keyTok.Text), Rng: keyTok.Rng},
				Value: val,
			})
			p.skipNewlines()
			if p.cur().Kind == tokenComma {
				p.bump()
				p.skipNewlines()
				continue
			}
			break
		}
		m.Rng = p.closeBracket(open)
		return m
	}

	l := &ListLit{}
	for {
		l.Elems = append(l.Elems, p.parseExpr())
		p.skipNewlines()
		if p.cur().Kind == tokenComma {
			p.bump()
			p.skipNewlines()
			continue
		}
		break
	}
	l.Rng = p.closeBracket(open)
	return l
}

func (p *parser) closeBracket(open token) hcl.Range {
	if p.cur().Kind != tokenRBracket {
		p.errorf(p.cur().Rng, "Unbalanced brackets", "Expected \"]\" to close the literal opened at %s.", open.Rng.String())
		return hcl.RangeBetween(open.Rng, p.cur().Rng)
	}
	closeTok := p.bump()
	return hcl.RangeBetween(open.Rng, closeTok.Rng)
}

// parseBlockFor selects the closure strategy by the introducing call name.
func (p *parser) parseBlockFor(name string) *Closure {
	if opaqueBlocks[name] {
		return p.scanOpaqueClosure()
	}
	return p.parseClosure()
}

// scanOpaqueClosure consumes a balanced { ... } block without interpreting
// its contents. Braces inside string literals were already resolved by the
// lexer, so plain depth counting is enough.
func (p *parser) scanOpaqueClosure() *Closure {
	open := p.bump()
	depth := 0
	for {
		switch p.cur().Kind {
		case tokenEOF:
			p.errorf(p.cur().Rng, "Unclosed block", "Expected \"}\" to close the block opened at %s.", open.Rng.String())
			end := p.cur().Rng
			return &Closure{
				Rng:     hcl.RangeBetween(open.Rng, end),
				BodyRng: hcl.Range{Filename: open.Rng.Filename, Start: open.Rng.End, End: end.Start},
			}
		case tokenLBrace:
			depth++
			p.bump()
		case tokenRBrace:
			if depth == 0 {
				closeTok := p.bump()
				return &Closure{
					Rng:     hcl.RangeBetween(open.Rng, closeTok.Rng),
					BodyRng: hcl.Range{Filename: open.Rng.Filename, Start: open.Rng.End, End: closeTok.Rng.Start},
				}
			}
			depth--
			p.bump()
		default:
			p.bump()
		}
	}
}

func (p *parser) parseClosure() *Closure {
	open := p.bump()
	stmts := p.parseStmtList(tokenRBrace)
	if p.cur().Kind != tokenRBrace {
		p.errorf(p.cur().Rng, "Unclosed block", "Expected \"}\" to close the block opened at %s.", open.Rng.String())
		end := p.cur().Rng
		return &Closure{
			Stmts:   stmts,
			Rng:     hcl.RangeBetween(open.Rng, end),
			BodyRng: hcl.Range{Filename: open.Rng.Filename, Start: open.Rng.End, End: end.Start},
		}
	}
	closeTok := p.bump()
	return &Closure{
		Stmts:   stmts,
		Rng:     hcl.RangeBetween(open.Rng, closeTok.Rng),
		BodyRng: hcl.Range{Filename: open.Rng.Filename, Start: open.Rng.End, End: closeTok.Rng.Start},
	}
}
