package parser

import (
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/declpipe/internal/diag"
	"github.com/vk/declpipe/internal/model"
	"github.com/vk/declpipe/internal/registry"
	"github.com/vk/declpipe/internal/syntax"
)

// EntryPointName is the top-level call that introduces a declarative
// pipeline inside an otherwise generic script.
const EntryPointName = "pipeline"

// Structural failures that abort a parse without producing a model.
var (
	// ErrMissingBlock is returned when the pipeline entry point has no
	// trailing block.
	ErrMissingBlock = errors.New("pipeline entry point has no block")
	// ErrNotAtTop is returned when a pipeline block appears nested below
	// the module's top level.
	ErrNotAtTop = errors.New("pipeline block is not at the top level")
)

// Parser builds a model tree from one module. Each Parser serves a single
// parse: it owns a per-parse memoized view of the descriptor registry and
// must not be reused or shared across goroutines.
type Parser struct {
	file   *syntax.File
	lookup registry.Lookup
	rep    *diag.Reporter
}

// New returns a parser over file's syntax tree, resolving descriptors
// through lookup and reporting recoverable findings to rep.
func New(file *syntax.File, lookup registry.Lookup, rep *diag.Reporter) *Parser {
	return &Parser{
		file:   file,
		lookup: registry.Memoize(lookup),
		rep:    rep,
	}
}

// Parse locates the pipeline entry point and builds the model. A module
// with no entry point anywhere is not a pipeline at all: Parse returns
// (nil, nil) so hosts can fall back to treating the script generically.
func (p *Parser) Parse(mod *syntax.Module) (*model.Pipeline, error) {
	var entry *syntax.MethodCall
	for _, stmt := range mod.Stmts {
		call := matchMethodCall(stmt)
		if call == nil || call.Name != EntryPointName {
			continue
		}
		if entry != nil {
			p.rep.Errorf(call.Rng, "Multiple occurrences of the %s block. Only one is allowed.", EntryPointName)
			continue
		}
		entry = call
	}

	if entry == nil {
		if nested := findNestedEntry(mod.Stmts); nested != nil {
			p.rep.Errorf(nested.Rng, "The %s block must appear at the top level of the script, not nested inside another block.", EntryPointName)
			return nil, ErrNotAtTop
		}
		return nil, nil
	}

	body, _ := entry.TrailingClosure()
	if body == nil {
		p.rep.Errorf(entry.Rng, "The %s block must be followed by a { } body.", EntryPointName)
		return nil, ErrMissingBlock
	}
	return p.parsePipeline(entry, body), nil
}

// findNestedEntry looks for a pipeline call anywhere below the top level.
func findNestedEntry(stmts []syntax.Stmt) *syntax.MethodCall {
	var walkExpr func(e syntax.Expr, depth int) *syntax.MethodCall
	walkExpr = func(e syntax.Expr, depth int) *syntax.MethodCall {
		switch e := e.(type) {
		case *syntax.MethodCall:
			if e.Name == EntryPointName && depth > 0 {
				return e
			}
			for _, arg := range e.Args {
				if found := walkExpr(arg.Value, depth); found != nil {
					return found
				}
			}
		case *syntax.Closure:
			for _, stmt := range e.Stmts {
				if es, ok := stmt.(*syntax.ExprStmt); ok {
					if found := walkExpr(es.X, depth+1); found != nil {
						return found
					}
				}
			}
		}
		return nil
	}
	for _, stmt := range stmts {
		if es, ok := stmt.(*syntax.ExprStmt); ok {
			if found := walkExpr(es.X, 0); found != nil {
				return found
			}
		}
	}
	return nil
}

// matchMethodCall recognizes an expression statement that is a method call
// against the implicit receiver, or returns nil.
func matchMethodCall(stmt syntax.Stmt) *syntax.MethodCall {
	es, ok := stmt.(*syntax.ExprStmt)
	if !ok {
		return nil
	}
	call, ok := es.X.(*syntax.MethodCall)
	if !ok {
		return nil
	}
	return call
}

// matchBlockStatement recognizes a method call whose final argument is a
// block literal, returning the call, its non-block arguments and the body.
func matchBlockStatement(stmt syntax.Stmt) (*syntax.MethodCall, []syntax.Arg, *syntax.Closure) {
	call := matchMethodCall(stmt)
	if call == nil {
		return nil, nil, nil
	}
	body, rest := call.TrailingClosure()
	if body == nil {
		return nil, nil, nil
	}
	return call, rest, body
}

// legacySections maps renamed or removed top-level keywords to their
// migration messages. These must not fall through to "undefined section".
var legacySections = map[string]string{
	"postBuild":     "The postBuild section has been renamed as of version 0.8. Use post instead.",
	"notifications": "The notifications section has been removed as of version 0.6. Use post with the relevant conditions instead.",
	"jobProperties": "The jobProperties section has been renamed as of version 0.8. Use options instead.",
	"wrappers":      "The wrappers section has been removed as of version 0.8. Use options instead.",
}

// parsePipeline parses the entry point's body into the root node. Sections
// must be unique; a repeat is reported and the most recent occurrence wins.
func (p *Parser) parsePipeline(entry *syntax.MethodCall, body *syntax.Closure) *model.Pipeline {
	def := &model.Pipeline{Span: entry.Rng}
	seen := map[string]bool{}

	for _, stmt := range body.Stmts {
		call := matchMethodCall(stmt)
		if call == nil {
			p.rep.Errorf(stmt.Range(), "Not a valid section definition. Each top-level entry must be a section like agent, stages or environment.")
			continue
		}
		if msg, ok := legacySections[call.Name]; ok {
			p.rep.Errorf(call.Rng, "%s", msg)
			continue
		}
		if seen[call.Name] {
			p.rep.Errorf(call.Rng, "Multiple occurrences of the %s section.", call.Name)
		}
		seen[call.Name] = true

		switch call.Name {
		case "stages":
			def.Stages = p.parseStages(call)
		case "agent":
			def.Agent = p.parseAgent(call)
		case "environment":
			def.Environment = p.parseEnvironment(call)
		case "tools":
			def.Tools = p.parseTools(call)
		case "options":
			def.Options = &model.Options{Entries: p.parseTaskSection(call), Span: call.Rng}
		case "parameters":
			def.Parameters = &model.Parameters{Entries: p.parseTaskSection(call), Span: call.Rng}
		case "triggers":
			def.Triggers = &model.Triggers{Entries: p.parseTaskSection(call), Span: call.Rng}
		case "post":
			def.Post = p.parsePost(call)
		default:
			p.rep.Errorf(call.Rng, "Undefined section %q.", call.Name)
		}
	}
	return def
}

// sectionBody requires the section call to carry a block and no other
// arguments, substituting an empty body on failure so parsing continues.
func (p *Parser) sectionBody(call *syntax.MethodCall) *syntax.Closure {
	body, rest := call.TrailingClosure()
	if body == nil {
		p.rep.Errorf(call.Rng, "The %s section must be followed by a { } body.", call.Name)
		return &syntax.Closure{Rng: call.Rng}
	}
	if len(rest) > 0 {
		p.rep.Errorf(call.Rng, "The %s section takes no arguments besides its body.", call.Name)
	}
	return body
}

// spanOf returns the best range for a node, falling back to zero.
func spanOf(n syntax.Node) hcl.Range {
	if n == nil {
		return hcl.Range{}
	}
	return n.Range()
}
