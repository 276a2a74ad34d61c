package parser

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/declpipe/internal/model"
	"github.com/vk/declpipe/internal/syntax"
	"github.com/zclconf/go-cty/cty"
)

// legacyClassKey is the discriminator key of the legacy meta-step call
// shape: someStep([$class: 'Foo', ...]). A map carrying it must stay a
// single whole-map argument instead of being flattened into named
// parameters, preserving backward compatibility.
const legacyClassKey = "$class"

// parseArguments disambiguates a call's non-block arguments into exactly
// one of the three argument-list shapes, then applies the sole-required-
// parameter promotion for the named symbol.
func (p *Parser) parseArguments(name string, args []syntax.Arg, callRng hcl.Range) *model.Arguments {
	out := p.disambiguate(args, callRng)
	return p.promoteSoleArg(name, out)
}

// disambiguate applies the argument-shape rules: no arguments is an empty
// named list; key: value arguments form a named list; a lone map literal
// without $class is flattened to a named list; a lone value of any other
// shape is a single argument; two or more values are positional.
func (p *Parser) disambiguate(args []syntax.Arg, callRng hcl.Range) *model.Arguments {
	if len(args) == 0 {
		return model.EmptyNamedArgs(callRng)
	}

	named := 0
	for _, a := range args {
		if a.Name != "" {
			named++
		}
	}
	switch {
	case named == len(args):
		out := &model.Arguments{Kind: model.NamedArgs, Span: callRng}
		seen := map[string]bool{}
		for _, a := range args {
			if seen[a.Name] {
				p.rep.Errorf(a.NameRng, "Duplicate named parameter '%s' found.", a.Name)
				continue
			}
			seen[a.Name] = true
			out.Named = append(out.Named, model.NamedArg{
				Key:   model.Key{Name: a.Name, Span: a.NameRng},
				Value: p.lowerExpr(a.Value),
			})
		}
		return out
	case named > 0:
		p.rep.Errorf(callRng, "Cannot mix named and unnamed arguments in one call.")
		return model.EmptyNamedArgs(callRng)
	}

	if len(args) == 1 {
		if m, ok := args[0].Value.(*syntax.MapLit); ok && !m.HasKey(legacyClassKey) {
			out := &model.Arguments{Kind: model.NamedArgs, Span: callRng}
			seen := map[string]bool{}
			for _, ent := range m.Entries {
				key, ok := mapKeyName(ent.Key)
				if !ok {
					p.rep.Errorf(ent.Key.Range(), "Map keys must be constant names or strings.")
					continue
				}
				if seen[key] {
					p.rep.Errorf(ent.Key.Range(), "Duplicate named parameter '%s' found.", key)
					continue
				}
				seen[key] = true
				out.Named = append(out.Named, model.NamedArg{
					Key:   model.Key{Name: key, Span: ent.Key.Range()},
					Value: p.lowerExpr(ent.Value),
				})
			}
			return out
		}
		return &model.Arguments{
			Kind:   model.SingleArg,
			Single: p.lowerExpr(args[0].Value),
			Span:   callRng,
		}
	}

	out := &model.Arguments{Kind: model.PositionalArgs, Span: callRng}
	for _, a := range args {
		out.Positional = append(out.Positional, p.lowerExpr(a.Value))
	}
	return out
}

// promoteSoleArg rewrites a single argument into a named list binding the
// symbol's sole required parameter, when the descriptor declares exactly
// one required parameter and no trailing block. Callers of such steps may
// omit the parameter name.
func (p *Parser) promoteSoleArg(name string, args *model.Arguments) *model.Arguments {
	if args.Kind != model.SingleArg {
		return args
	}
	desc := p.lookup.Resolve(name)
	if desc == nil || desc.TakesBlock {
		return args
	}
	sole, ok := desc.SoleRequiredParameter()
	if !ok {
		return args
	}
	return &model.Arguments{
		Kind: model.NamedArgs,
		Named: []model.NamedArg{{
			Key:   model.Key{Name: sole, Span: args.Single.Span},
			Value: args.Single,
		}},
		Span: args.Span,
	}
}

func mapKeyName(key syntax.Expr) (string, bool) {
	switch key := key.(type) {
	case *syntax.Literal:
		if key.Value.Type() == cty.String {
			return key.Value.AsString(), true
		}
	case *syntax.VarRef:
		return key.Name, true
	}
	return "", false
}

// lowerExpr lowers a syntax expression to a model value. Constants map
// directly; interpolated strings and composite expressions become
// placeholders carrying their verbatim source, evaluated later by the
// execution engine; a bare symbol naming a zero-argument agent type is
// folded to a constant string.
func (p *Parser) lowerExpr(e syntax.Expr) *model.Value {
	switch e := e.(type) {
	case *syntax.Literal:
		return model.ConstantValue(e.Value, e.Rng)
	case *syntax.InterpolatedString:
		return model.PlaceholderValue(e.Raw, e.Rng)
	case *syntax.VarRef:
		for _, t := range p.lookup.ZeroArgAgentTypes() {
			if e.Name == t {
				return model.ConstantValue(cty.StringVal(e.Name), e.Rng)
			}
		}
		return model.PlaceholderValue(p.file.Snippet(e.Rng), e.Rng)
	case *syntax.MapLit:
		if v, ok := p.constMap(e); ok {
			return model.ConstantValue(v, e.Rng)
		}
		return model.PlaceholderValue(p.file.Snippet(e.Rng), e.Rng)
	case *syntax.ListLit:
		if v, ok := p.constList(e); ok {
			return model.ConstantValue(v, e.Rng)
		}
		return model.PlaceholderValue(p.file.Snippet(e.Rng), e.Rng)
	case *syntax.MethodCall:
		return model.PlaceholderValue(p.file.Snippet(e.Rng), e.Rng)
	case *syntax.Closure:
		p.rep.Errorf(e.Rng, "A block is not a valid argument value here.")
		return model.PlaceholderValue(p.file.Snippet(e.Rng), e.Rng)
	}
	return model.PlaceholderValue("", spanOf(e))
}

// constMap folds a map literal whose keys and values are all constants
// into a cty object value.
func (p *Parser) constMap(m *syntax.MapLit) (cty.Value, bool) {
	attrs := make(map[string]cty.Value, len(m.Entries))
	for _, ent := range m.Entries {
		key, ok := mapKeyName(ent.Key)
		if !ok {
			return cty.NilVal, false
		}
		if _, dup := attrs[key]; dup {
			p.rep.Errorf(ent.Key.Range(), "Duplicate map key: '%s'.", key)
		}
		val := p.constExpr(ent.Value)
		if val == cty.NilVal {
			return cty.NilVal, false
		}
		attrs[key] = val
	}
	return cty.ObjectVal(attrs), true
}

func (p *Parser) constList(l *syntax.ListLit) (cty.Value, bool) {
	if len(l.Elems) == 0 {
		return cty.EmptyTupleVal, true
	}
	vals := make([]cty.Value, 0, len(l.Elems))
	for _, e := range l.Elems {
		val := p.constExpr(e)
		if val == cty.NilVal {
			return cty.NilVal, false
		}
		vals = append(vals, val)
	}
	return cty.TupleVal(vals), true
}

func (p *Parser) constExpr(e syntax.Expr) cty.Value {
	switch e := e.(type) {
	case *syntax.Literal:
		return e.Value
	case *syntax.MapLit:
		if v, ok := p.constMap(e); ok {
			return v
		}
	case *syntax.ListLit:
		if v, ok := p.constList(e); ok {
			return v
		}
	}
	return cty.NilVal
}
