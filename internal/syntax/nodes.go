package syntax

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Node is implemented by every statement and expression in the tree.
type Node interface {
	Range() hcl.Range
}

// Module is the root of a parsed script: an ordered list of statements.
type Module struct {
	Stmts []Stmt
	Rng   hcl.Range
}

func (m *Module) Range() hcl.Range { return m.Rng }

// Stmt is the sealed statement variant set. The only statement kinds the
// scripting subset needs are expression statements (method calls, mostly)
// and binary assignments.
type Stmt interface {
	Node
	stmtNode()
}

// ExprStmt is an expression evaluated for effect, e.g. a method call.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Range() hcl.Range { return s.X.Range() }
func (s *ExprStmt) stmtNode()        {}

// Assign is a `name = value` binding, as used in environment sections.
type Assign struct {
	Name    string
	NameRng hcl.Range
	Value   Expr
	Rng     hcl.Range
}

func (s *Assign) Range() hcl.Range { return s.Rng }
func (s *Assign) stmtNode()        {}

// Expr is the sealed expression variant set.
type Expr interface {
	Node
	exprNode()
}

// Arg is a single call argument, named when Name is non-empty.
type Arg struct {
	Name    string
	NameRng hcl.Range
	Value   Expr
}

// MethodCall is `name(args...)` against the implicit receiver. A trailing
// closure, in either the `name(args) { ... }` or `name { ... }` spelling, is
// appended as the final positional argument, so callers can uniformly check
// the last argument for a *Closure.
type MethodCall struct {
	Name    string
	NameRng hcl.Range
	Args    []Arg
	Rng     hcl.Range
}

func (e *MethodCall) Range() hcl.Range { return e.Rng }
func (e *MethodCall) exprNode()        {}

// TrailingClosure returns the final-argument closure and the remaining
// arguments, or nil and the full argument list when there is none.
func (e *MethodCall) TrailingClosure() (*Closure, []Arg) {
	if n := len(e.Args); n > 0 && e.Args[n-1].Name == "" {
		if c, ok := e.Args[n-1].Value.(*Closure); ok {
			return c, e.Args[:n-1]
		}
	}
	return nil, e.Args
}

// Closure is a `{ ... }` block literal. BodyRng spans the content between
// the braces, exclusive, so the verbatim body text can be recovered.
type Closure struct {
	Stmts   []Stmt
	Rng     hcl.Range
	BodyRng hcl.Range
}

func (e *Closure) Range() hcl.Range { return e.Rng }
func (e *Closure) exprNode()        {}

// Literal is a constant: string, number or boolean, carried as a cty.Value.
type Literal struct {
	Value cty.Value
	Rng   hcl.Range
}

func (e *Literal) Range() hcl.Range { return e.Rng }
func (e *Literal) exprNode()        {}

// InterpolatedString is a double-quoted string containing `$` interpolation.
// Its contents are never evaluated here; the verbatim source spelling,
// quotes included, rides along for the execution engine.
type InterpolatedString struct {
	Raw string
	Rng hcl.Range
}

func (e *InterpolatedString) Range() hcl.Range { return e.Rng }
func (e *InterpolatedString) exprNode()        {}

// MapEntry is one key/value pair of a map literal.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is a `[key: value, ...]` literal. `[:]` parses as an empty map.
type MapLit struct {
	Entries []MapEntry
	Rng     hcl.Range
}

func (e *MapLit) Range() hcl.Range { return e.Rng }
func (e *MapLit) exprNode()        {}

// HasKey reports whether any entry's key is the given literal string.
func (e *MapLit) HasKey(name string) bool {
	for _, ent := range e.Entries {
		if lit, ok := ent.Key.(*Literal); ok && lit.Value.Type() == cty.String && lit.Value.AsString() == name {
			return true
		}
		if ref, ok := ent.Key.(*VarRef); ok && ref.Name == name {
			return true
		}
	}
	return false
}

// ListLit is a `[a, b, c]` literal.
type ListLit struct {
	Elems []Expr
	Rng   hcl.Range
}

func (e *ListLit) Range() hcl.Range { return e.Rng }
func (e *ListLit) exprNode()        {}

// VarRef is a bare, possibly dotted, identifier used as a value, e.g. the
// `any` in `agent any` or a qualified constant reference.
type VarRef struct {
	Name string
	Rng  hcl.Range
}

func (e *VarRef) Range() hcl.Range { return e.Rng }
func (e *VarRef) exprNode()        {}
