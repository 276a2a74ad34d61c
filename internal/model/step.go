package model

import (
	"encoding/json"

	"github.com/hashicorp/hcl/v2"
)

// Step is the sealed variant set for entries of a branch or a when block.
// Concrete kinds are TaskStep (a plain call), TreeStep (a block-taking call
// with nested steps) and ScriptBlock (a verbatim embedded code block).
type Step interface {
	// StepName is the invoked symbol's name.
	StepName() string
	// Range is the step's source span, zero when stripped.
	Range() hcl.Range

	stepNode()
	writeSource(pr *printer)
}

// TaskStep is a plain `name(arguments)` step without nested children. It
// also serves as the entry shape for options, parameters and triggers.
type TaskStep struct {
	Name Key
	Args *Arguments
	Span hcl.Range
}

func (s *TaskStep) StepName() string { return s.Name.Name }
func (s *TaskStep) Range() hcl.Range { return s.Span }
func (s *TaskStep) stepNode()        {}

func (s *TaskStep) MarshalJSON() ([]byte, error) {
	type out struct {
		Name      string     `json:"name"`
		Arguments *Arguments `json:"arguments"`
	}
	return json.Marshal(out{Name: s.Name.Name, Arguments: s.Args})
}

func (s *TaskStep) writeSource(pr *printer) {
	pr.linef("%s(%s)", s.Name.Name, s.Args.SourceText())
}

// TreeStep is a block-taking step, like timeout or retry, whose trailing
// block holds nested steps.
type TreeStep struct {
	Name     Key
	Args     *Arguments
	Children []Step
	Span     hcl.Range
}

func (s *TreeStep) StepName() string { return s.Name.Name }
func (s *TreeStep) Range() hcl.Range { return s.Span }
func (s *TreeStep) stepNode()        {}

func (s *TreeStep) MarshalJSON() ([]byte, error) {
	type out struct {
		Name      string     `json:"name"`
		Arguments *Arguments `json:"arguments"`
		Children  []Step     `json:"children"`
	}
	return json.Marshal(out{Name: s.Name.Name, Arguments: s.Args, Children: s.Children})
}

func (s *TreeStep) writeSource(pr *printer) {
	if args := s.Args.SourceText(); args != "" {
		pr.openf("%s(%s) {", s.Name.Name, args)
	} else {
		pr.openf("%s {", s.Name.Name)
	}
	for _, child := range s.Children {
		child.writeSource(pr)
	}
	pr.close()
}

// ScriptBlock captures the verbatim source text of an embedded code block:
// a `script { ... }` step or a when `expression { ... }`. The body is never
// parsed here; the execution engine evaluates it later.
type ScriptBlock struct {
	// Name is "script" or "expression".
	Name Key
	// Source is the exact substring of the original source between the
	// block's braces.
	Source string
	Span   hcl.Range
}

func (s *ScriptBlock) StepName() string { return s.Name.Name }
func (s *ScriptBlock) Range() hcl.Range { return s.Span }
func (s *ScriptBlock) stepNode()        {}

func (s *ScriptBlock) MarshalJSON() ([]byte, error) {
	type envelope struct {
		IsLiteral bool   `json:"isLiteral"`
		Value     string `json:"value"`
	}
	type out struct {
		Name      string   `json:"name"`
		Arguments envelope `json:"arguments"`
	}
	return json.Marshal(out{Name: s.Name.Name, Arguments: envelope{IsLiteral: true, Value: s.Source}})
}

func (s *ScriptBlock) writeSource(pr *printer) {
	pr.openf("%s {", s.Name.Name)
	pr.verbatim(s.Source)
	pr.close()
}
