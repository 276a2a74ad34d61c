package parser

import (
	"github.com/vk/declpipe/internal/model"
	"github.com/vk/declpipe/internal/syntax"
	"github.com/zclconf/go-cty/cty"
)

// parseEnvironment parses `NAME = value` bindings. Values must be string
// constants or interpolations; anything else is reported and skipped.
func (p *Parser) parseEnvironment(call *syntax.MethodCall) *model.Environment {
	body := p.sectionBody(call)
	env := &model.Environment{Span: call.Rng}
	seen := map[string]bool{}
	for _, stmt := range body.Stmts {
		as, ok := stmt.(*syntax.Assign)
		if !ok {
			p.rep.Errorf(stmt.Range(), "Expected an environment variable assignment like NAME = 'value'.")
			continue
		}
		if seen[as.Name] {
			p.rep.Errorf(as.NameRng, "Duplicate environment variable name: '%s'.", as.Name)
			continue
		}
		seen[as.Name] = true
		val := p.lowerExpr(as.Value)
		if val.IsConstant() && val.Const.Type() != cty.String {
			p.rep.Errorf(as.Value.Range(), "Environment variable values must be strings.")
			continue
		}
		env.Entries = append(env.Entries, model.EnvEntry{
			Key:   model.Key{Name: as.Name, Span: as.NameRng},
			Value: val,
		})
	}
	return env
}

// parseTools parses `toolType 'version'` entries.
func (p *Parser) parseTools(call *syntax.MethodCall) *model.Tools {
	body := p.sectionBody(call)
	tools := &model.Tools{Span: call.Rng}
	for _, stmt := range body.Stmts {
		entry := matchMethodCall(stmt)
		if entry == nil || len(entry.Args) != 1 || entry.Args[0].Name != "" {
			p.rep.Errorf(stmt.Range(), "Expected a tool entry like maven 'M3'.")
			continue
		}
		tools.Entries = append(tools.Entries, model.ToolEntry{
			Key:   model.Key{Name: entry.Name, Span: entry.NameRng},
			Value: p.lowerExpr(entry.Args[0].Value),
		})
	}
	return tools
}

// parseTaskSection parses the method-call entries of an options,
// parameters or triggers section.
func (p *Parser) parseTaskSection(call *syntax.MethodCall) []*model.TaskStep {
	body := p.sectionBody(call)
	var entries []*model.TaskStep
	for _, stmt := range body.Stmts {
		entry := matchMethodCall(stmt)
		if entry == nil {
			p.rep.Errorf(stmt.Range(), "Expected a method call entry in the %s section.", call.Name)
			continue
		}
		if cl, _ := entry.TrailingClosure(); cl != nil {
			p.rep.Errorf(entry.Rng, "Entries in the %s section cannot take a block.", call.Name)
			continue
		}
		entries = append(entries, &model.TaskStep{
			Name: model.Key{Name: entry.Name, Span: entry.NameRng},
			Args: p.parseArguments(entry.Name, entry.Args, entry.Rng),
			Span: entry.Rng,
		})
	}
	return entries
}
