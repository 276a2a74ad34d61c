package parser

import (
	"strings"

	"github.com/vk/declpipe/internal/model"
	"github.com/vk/declpipe/internal/syntax"
	"github.com/zclconf/go-cty/cty"
)

func (p *Parser) parseStages(call *syntax.MethodCall) *model.Stages {
	body := p.sectionBody(call)
	out := &model.Stages{Span: call.Rng}
	for _, stmt := range body.Stmts {
		if stage := p.parseStage(stmt); stage != nil {
			out.Stages = append(out.Stages, stage)
		}
	}
	return out
}

// stageSections is the closed keyword set recognized inside a stage body.
func (p *Parser) parseStage(stmt syntax.Stmt) *model.Stage {
	call := matchMethodCall(stmt)
	if call == nil || call.Name != "stage" {
		p.rep.Errorf(stmt.Range(), "Expected a stage.")
		return nil
	}
	body, rest := call.TrailingClosure()
	if body == nil {
		p.rep.Errorf(call.Rng, "The stage %q must be followed by a { } body.", stageNameHint(call))
		return nil
	}

	stage := &model.Stage{Span: call.Rng}
	switch {
	case len(rest) == 0:
		p.rep.Errorf(call.Rng, "Expected a stage name but didn't find any.")
	case len(rest) > 1:
		p.rep.Errorf(call.Rng, "Too many arguments to stage. Expected a single name.")
	default:
		lit, ok := rest[0].Value.(*syntax.Literal)
		if !ok || lit.Value.Type() != cty.String {
			p.rep.Errorf(rest[0].Value.Range(), "Expected a string literal for the stage name.")
		} else {
			stage.Name = lit.Value.AsString()
		}
	}

	seen := map[string]bool{}
	for _, inner := range body.Stmts {
		sec := matchMethodCall(inner)
		if sec == nil {
			p.rep.Errorf(inner.Range(), "Not a valid stage section definition.")
			continue
		}
		if seen[sec.Name] {
			p.rep.Errorf(sec.Rng, "Multiple occurrences of the %s section in stage %q.", sec.Name, stage.Name)
		}
		seen[sec.Name] = true

		switch sec.Name {
		case "steps":
			if stage.Stages != nil {
				p.rep.Errorf(sec.Rng, "Only one of steps or stages is allowed in stage %q.", stage.Name)
				stage.Stages = nil
			}
			branches, failFast := p.parseStepsBlock(sec)
			stage.Branches = branches
			stage.FailFast = failFast
		case "stages":
			if stage.Branches != nil {
				p.rep.Errorf(sec.Rng, "Only one of steps or stages is allowed in stage %q.", stage.Name)
				stage.Branches = nil
				stage.FailFast = nil
			}
			stage.Stages = p.parseStages(sec)
		case "agent":
			stage.Agent = p.parseAgent(sec)
		case "when":
			stage.When = p.parseWhen(sec)
		case "tools":
			stage.Tools = p.parseTools(sec)
		case "environment":
			stage.Environment = p.parseEnvironment(sec)
		case "post":
			stage.Post = p.parsePost(sec)
		default:
			p.rep.Errorf(sec.Rng, "Unknown stage section %q.", sec.Name)
		}
	}
	return stage
}

func stageNameHint(call *syntax.MethodCall) string {
	_, rest := call.TrailingClosure()
	if len(rest) == 1 {
		if lit, ok := rest[0].Value.(*syntax.Literal); ok && lit.Value.Type() == cty.String {
			return lit.Value.AsString()
		}
	}
	return "<unnamed>"
}

// parseStepsBlock inspects a steps body: a sole parallel(...) call becomes
// the stage's branch set, anything else is a single default branch.
func (p *Parser) parseStepsBlock(call *syntax.MethodCall) ([]*model.Branch, *bool) {
	body := p.sectionBody(call)

	if len(body.Stmts) == 1 {
		if par := matchMethodCall(body.Stmts[0]); par != nil && par.Name == "parallel" {
			if cl, _ := par.TrailingClosure(); cl == nil {
				return p.parseParallel(par)
			}
		}
	}

	branch := p.parseBranch(model.DefaultBranchName, body)
	return []*model.Branch{branch}, nil
}

// parseParallel turns a parallel(name: { ... }, ..., failFast: bool) call
// into named branches. Every entry must be a branch block or the reserved
// failFast flag; any other shape is an error.
func (p *Parser) parseParallel(call *syntax.MethodCall) ([]*model.Branch, *bool) {
	var branches []*model.Branch
	var failFast *bool
	seen := map[string]bool{}

	args := call.Args
	// The single-map spelling parallel([one: { ... }]) is equivalent to
	// named arguments.
	if len(args) == 1 && args[0].Name == "" {
		if m, ok := args[0].Value.(*syntax.MapLit); ok {
			args = nil
			for _, ent := range m.Entries {
				name, _ := mapKeyName(ent.Key)
				args = append(args, syntax.Arg{Name: name, NameRng: ent.Key.Range(), Value: ent.Value})
			}
		}
	}

	for _, arg := range args {
		if arg.Name == "" {
			p.rep.Errorf(arg.Value.Range(), "The parallel step requires named branches.")
			continue
		}
		if arg.Name == "failFast" {
			lit, ok := arg.Value.(*syntax.Literal)
			if !ok || lit.Value.Type() != cty.Bool {
				p.rep.Errorf(arg.Value.Range(), "Expected a boolean constant for failFast.")
				continue
			}
			ff := lit.Value.True()
			failFast = &ff
			continue
		}
		cl, ok := arg.Value.(*syntax.Closure)
		if !ok {
			p.rep.Errorf(arg.Value.Range(), "Expected a block for parallel branch %q.", arg.Name)
			continue
		}
		if seen[arg.Name] {
			p.rep.Errorf(arg.NameRng, "Duplicate parallel branch name: '%s'.", arg.Name)
			continue
		}
		seen[arg.Name] = true
		branches = append(branches, p.parseBranch(arg.Name, cl))
	}
	return branches, failFast
}

func (p *Parser) parseBranch(name string, body *syntax.Closure) *model.Branch {
	branch := &model.Branch{Name: name, Span: body.Rng}
	for _, stmt := range body.Stmts {
		if step := p.parseStep(stmt); step != nil {
			branch.Steps = append(branch.Steps, step)
		}
	}
	return branch
}

// scriptStepNames are the steps whose block bodies are captured verbatim
// instead of being parsed into child steps.
var scriptStepNames = map[string]bool{
	"script":     true,
	"expression": true,
}

// parseStep parses one step statement into its model variant: a verbatim
// script block, a tree step with nested children, or a plain task step.
func (p *Parser) parseStep(stmt syntax.Stmt) model.Step {
	call := matchMethodCall(stmt)
	if call == nil {
		p.rep.Errorf(stmt.Range(), "Expected a step.")
		return nil
	}

	body, rest := call.TrailingClosure()

	if scriptStepNames[call.Name] {
		if body == nil {
			p.rep.Errorf(call.Rng, "The %s step must be followed by a { } body.", call.Name)
			return nil
		}
		if len(rest) > 0 {
			p.rep.Errorf(call.Rng, "The %s step takes no arguments besides its body.", call.Name)
		}
		return &model.ScriptBlock{
			Name:   model.Key{Name: call.Name, Span: call.NameRng},
			Source: p.captureBlock(body),
			Span:   call.Rng,
		}
	}

	if body != nil {
		tree := &model.TreeStep{
			Name: model.Key{Name: call.Name, Span: call.NameRng},
			Args: p.parseArguments(call.Name, rest, call.Rng),
			Span: call.Rng,
		}
		for _, inner := range body.Stmts {
			if child := p.parseStep(inner); child != nil {
				tree.Children = append(tree.Children, child)
			}
		}
		return tree
	}

	return &model.TaskStep{
		Name: model.Key{Name: call.Name, Span: call.NameRng},
		Args: p.parseArguments(call.Name, call.Args, call.Rng),
		Span: call.Rng,
	}
}

// captureBlock returns the verbatim source between a block's braces,
// trimmed to the first and last non-whitespace columns so the capture is
// independent of how the surrounding block was indented.
func (p *Parser) captureBlock(body *syntax.Closure) string {
	return strings.TrimSpace(p.file.Snippet(body.BodyRng))
}

// parseWhen parses the stage guard: an ordered list of condition steps,
// where expression blocks are captured verbatim and allOf/anyOf/not nest
// further conditions.
func (p *Parser) parseWhen(call *syntax.MethodCall) *model.When {
	body := p.sectionBody(call)
	when := &model.When{Span: call.Rng}
	for _, stmt := range body.Stmts {
		if cond := p.parseStep(stmt); cond != nil {
			when.Conditions = append(when.Conditions, cond)
		}
	}
	return when
}

// parsePost parses a post or stage-post section into ordered
// (condition, branch) pairs.
func (p *Parser) parsePost(call *syntax.MethodCall) *model.Post {
	body := p.sectionBody(call)
	post := &model.Post{Span: call.Rng}
	for _, stmt := range body.Stmts {
		cond, rest, condBody := matchBlockStatement(stmt)
		if cond == nil {
			p.rep.Errorf(stmt.Range(), "Expected a build condition block like always { ... }.")
			continue
		}
		if len(rest) > 0 {
			p.rep.Errorf(cond.Rng, "The %s condition takes no arguments besides its body.", cond.Name)
		}
		post.Conditions = append(post.Conditions, &model.BuildCondition{
			Condition: model.Key{Name: cond.Name, Span: cond.NameRng},
			Branch:    p.parseBranch(cond.Name, condBody),
			Span:      cond.Rng,
		})
	}
	return post
}
