package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Key is a resolved identifier: a method name, parameter name or
// environment variable name.
type Key struct {
	Name string
	Span hcl.Range
}

func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Name)
}

// Value is either a constant (string, number, boolean, or a whole map in
// the legacy meta-step shape) or an interpolated placeholder carrying the
// verbatim source text for the execution engine to evaluate later.
type Value struct {
	// Const holds the constant value; cty.NilVal for placeholders.
	Const cty.Value
	// Source is the verbatim source spelling of a placeholder, quotes
	// included. Empty for constants.
	Source string
	Span   hcl.Range
}

// ConstantValue builds a constant Value.
func ConstantValue(v cty.Value, span hcl.Range) *Value {
	return &Value{Const: v, Span: span}
}

// PlaceholderValue builds an interpolated/composite placeholder Value.
func PlaceholderValue(source string, span hcl.Range) *Value {
	return &Value{Const: cty.NilVal, Source: source, Span: span}
}

// IsConstant reports whether the value was fully resolved at parse time.
func (v *Value) IsConstant() bool {
	return v.Const != cty.NilVal
}

func (v *Value) MarshalJSON() ([]byte, error) {
	type envelope struct {
		IsLiteral bool `json:"isLiteral"`
		Value     any  `json:"value"`
	}
	if v.IsConstant() {
		return json.Marshal(envelope{IsLiteral: true, Value: ctyToJSON(v.Const)})
	}
	return json.Marshal(envelope{IsLiteral: false, Value: v.Source})
}

// SourceText renders the value back into pipeline syntax.
func (v *Value) SourceText() string {
	if !v.IsConstant() {
		return v.Source
	}
	return ctyToSource(v.Const)
}

// ctyToJSON converts a constant to its natural JSON shape.
func ctyToJSON(v cty.Value) any {
	switch {
	case v.IsNull():
		return nil
	case v.Type() == cty.String:
		return v.AsString()
	case v.Type() == cty.Bool:
		return v.True()
	case v.Type() == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	case v.Type().IsObjectType():
		out := make(map[string]any, len(v.Type().AttributeTypes()))
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = ctyToJSON(ev)
		}
		return out
	case v.Type().IsTupleType() || v.Type().IsListType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ctyToJSON(ev))
		}
		return out
	}
	return nil
}

// ctyToSource renders a constant as a pipeline-syntax literal.
func ctyToSource(v cty.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case v.Type() == cty.String:
		return quoteSingle(v.AsString())
	case v.Type() == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case v.Type() == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return fmt.Sprintf("%d", i)
		}
		return bf.Text('g', -1)
	case v.Type().IsObjectType():
		if len(v.Type().AttributeTypes()) == 0 {
			return "[:]"
		}
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			parts = append(parts, fmt.Sprintf("%s: %s", k.AsString(), ctyToSource(ev)))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case v.Type().IsTupleType() || v.Type().IsListType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			parts = append(parts, ctyToSource(ev))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "null"
}

// quoteSingle renders s as a single-quoted string literal.
func quoteSingle(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(s[i])
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// ArgsKind selects the single representation an argument list uses. The
// parser picks exactly one per call; representations are never mixed.
type ArgsKind int

const (
	// NamedArgs maps parameter names to values.
	NamedArgs ArgsKind = iota
	// PositionalArgs is an ordered value list (two or more arguments).
	PositionalArgs
	// SingleArg is one unnamed value.
	SingleArg
)

// NamedArg is one key/value pair of a named argument list.
type NamedArg struct {
	Key   Key    `json:"key"`
	Value *Value `json:"value"`
}

// Arguments is a call's argument list in exactly one of the three shapes.
type Arguments struct {
	Kind       ArgsKind
	Named      []NamedArg
	Positional []*Value
	Single     *Value
	Span       hcl.Range
}

// EmptyNamedArgs returns the canonical zero-argument list.
func EmptyNamedArgs(span hcl.Range) *Arguments {
	return &Arguments{Kind: NamedArgs, Span: span}
}

// Find returns the value bound to the named parameter, for named lists.
func (a *Arguments) Find(name string) *Value {
	for _, na := range a.Named {
		if na.Key.Name == name {
			return na.Value
		}
	}
	return nil
}

func (a *Arguments) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case SingleArg:
		return json.Marshal(a.Single)
	case PositionalArgs:
		return json.Marshal(a.Positional)
	default:
		if a.Named == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Named)
	}
}

// SourceText renders the argument list, without surrounding parentheses.
func (a *Arguments) SourceText() string {
	switch a.Kind {
	case SingleArg:
		return a.Single.SourceText()
	case PositionalArgs:
		parts := make([]string, len(a.Positional))
		for i, v := range a.Positional {
			parts[i] = v.SourceText()
		}
		return strings.Join(parts, ", ")
	default:
		parts := make([]string, len(a.Named))
		for i, na := range a.Named {
			parts[i] = fmt.Sprintf("%s: %s", na.Key.Name, na.Value.SourceText())
		}
		return strings.Join(parts, ", ")
	}
}
