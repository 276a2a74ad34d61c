package parser

import (
	"github.com/vk/declpipe/internal/model"
	"github.com/vk/declpipe/internal/syntax"
	"github.com/zclconf/go-cty/cty"
)

// parseAgent distinguishes the three agent forms: a bare call with one
// unparenthesized symbol (`agent any`), a block whose single statement
// names the type and supplies its configuration
// (`agent { docker { image 'x' } }`), and everything else, which is an
// error.
func (p *Parser) parseAgent(call *syntax.MethodCall) *model.Agent {
	body, rest := call.TrailingClosure()

	if body == nil {
		switch {
		case len(call.Args) == 0:
			p.rep.Errorf(call.Rng, "No agent type specified. Must be one of %v.", p.lookup.AgentTypes())
			return &model.Agent{Span: call.Rng}
		case len(call.Args) > 1:
			p.rep.Errorf(call.Rng, "Too many arguments for agent. Expected a single type like any or none.")
			return &model.Agent{Span: call.Rng}
		}
		arg := call.Args[0]
		switch v := arg.Value.(type) {
		case *syntax.VarRef:
			return &model.Agent{Type: model.Key{Name: v.Name, Span: v.Rng}, Span: call.Rng}
		case *syntax.Literal:
			if v.Value.Type() == cty.String {
				return &model.Agent{Type: model.Key{Name: v.Value.AsString(), Span: v.Rng}, Span: call.Rng}
			}
		}
		p.rep.Errorf(arg.Value.Range(), "Expected an agent type name.")
		return &model.Agent{Span: call.Rng}
	}

	if len(rest) > 0 {
		p.rep.Errorf(call.Rng, "The agent section takes no arguments besides its body.")
	}
	switch {
	case len(body.Stmts) == 0:
		p.rep.Errorf(call.Rng, "No agent type specified. Must be one of %v.", p.lookup.AgentTypes())
		return &model.Agent{Span: call.Rng}
	case len(body.Stmts) > 1:
		p.rep.Errorf(call.Rng, "Only one agent type is allowed per agent section.")
		return &model.Agent{Span: call.Rng}
	}

	inner := matchMethodCall(body.Stmts[0])
	if inner == nil {
		// A zero-argument type like `agent { none }` is a bare reference,
		// not a call.
		if es, ok := body.Stmts[0].(*syntax.ExprStmt); ok {
			if ref, ok := es.X.(*syntax.VarRef); ok {
				return &model.Agent{
					Type:   model.Key{Name: ref.Name, Span: ref.Rng},
					Config: []model.NamedArg{},
					Span:   call.Rng,
				}
			}
		}
		p.rep.Errorf(body.Stmts[0].Range(), "Expected an agent type declaration.")
		return &model.Agent{Span: call.Rng}
	}

	agent := &model.Agent{
		Type: model.Key{Name: inner.Name, Span: inner.NameRng},
		// Config is non-nil for the block form even when empty, which
		// distinguishes `agent { none }` from `agent none` in rendering.
		Config: []model.NamedArg{},
		Span:   call.Rng,
	}

	innerBody, innerRest := inner.TrailingClosure()
	if innerBody != nil {
		// agent { docker { image 'x' \n args '-v' } }: each statement of
		// the nested block contributes one configuration entry.
		if len(innerRest) > 0 {
			p.rep.Errorf(inner.Rng, "The %s agent block takes no arguments besides its body.", inner.Name)
		}
		for _, stmt := range innerBody.Stmts {
			key, val := p.parseAgentConfigEntry(stmt)
			if key == nil {
				continue
			}
			agent.Config = append(agent.Config, model.NamedArg{Key: *key, Value: val})
		}
		return agent
	}

	// agent { label 'x' }: a single value is bound to the type's default
	// configuration key; named arguments are taken as-is.
	args := p.parseArguments("", inner.Args, inner.Rng)
	switch args.Kind {
	case model.NamedArgs:
		agent.Config = append(agent.Config, args.Named...)
	case model.SingleArg:
		agent.Config = append(agent.Config, model.NamedArg{
			Key:   model.Key{Name: p.defaultAgentConfigKey(inner.Name), Span: inner.NameRng},
			Value: args.Single,
		})
	default:
		p.rep.Errorf(inner.Rng, "Too many arguments for the %s agent type.", inner.Name)
	}
	return agent
}

// parseAgentConfigEntry parses one statement of a nested agent config
// block, e.g. `image 'ubuntu'`.
func (p *Parser) parseAgentConfigEntry(stmt syntax.Stmt) (*model.Key, *model.Value) {
	if as, ok := stmt.(*syntax.Assign); ok {
		key := model.Key{Name: as.Name, Span: as.NameRng}
		return &key, p.lowerExpr(as.Value)
	}
	call := matchMethodCall(stmt)
	if call == nil || len(call.Args) != 1 || call.Args[0].Name != "" {
		p.rep.Errorf(stmt.Range(), "Expected an agent configuration entry like key 'value'.")
		return nil, nil
	}
	key := model.Key{Name: call.Name, Span: call.NameRng}
	return &key, p.lowerExpr(call.Args[0].Value)
}

// defaultAgentConfigKey is the configuration key a lone value binds to for
// an agent type: the first key of the type's allowed set, or the type name
// itself when the registry has no data.
func (p *Parser) defaultAgentConfigKey(agentType string) string {
	if keys := p.lookup.AgentConfigKeys(agentType); len(keys) > 0 {
		return keys[0]
	}
	return agentType
}
