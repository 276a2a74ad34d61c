package model

import (
	"encoding/json"

	"github.com/hashicorp/hcl/v2"
)

// EnvEntry is one `NAME = value` binding of an environment section.
type EnvEntry struct {
	Key   Key    `json:"key"`
	Value *Value `json:"value"`
}

// Environment is the ordered variable list of a pipeline or stage
// environment section.
type Environment struct {
	Entries []EnvEntry
	Span    hcl.Range
}

func (e *Environment) MarshalJSON() ([]byte, error) {
	if e.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Entries)
}

func (e *Environment) writeSource(pr *printer) {
	pr.openf("environment {")
	for _, ent := range e.Entries {
		pr.linef("%s = %s", ent.Key.Name, ent.Value.SourceText())
	}
	pr.close()
}

// ToolEntry maps a tool type to the requested installation version.
type ToolEntry struct {
	Key   Key    `json:"key"`
	Value *Value `json:"value"`
}

// Tools is the tool installation list of a pipeline or stage.
type Tools struct {
	Entries []ToolEntry
	Span    hcl.Range
}

func (t *Tools) MarshalJSON() ([]byte, error) {
	if t.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Entries)
}

func (t *Tools) writeSource(pr *printer) {
	pr.openf("tools {")
	for _, ent := range t.Entries {
		pr.linef("%s %s", ent.Key.Name, ent.Value.SourceText())
	}
	pr.close()
}

// Options holds the ordered job option declarations.
type Options struct {
	Entries []*TaskStep
	Span    hcl.Range
}

func (o *Options) MarshalJSON() ([]byte, error) { return marshalEntries(o.Entries) }
func (o *Options) writeSource(pr *printer)      { writeEntrySection(pr, "options", o.Entries) }

// Parameters holds the ordered build parameter declarations.
type Parameters struct {
	Entries []*TaskStep
	Span    hcl.Range
}

func (p *Parameters) MarshalJSON() ([]byte, error) { return marshalEntries(p.Entries) }
func (p *Parameters) writeSource(pr *printer)      { writeEntrySection(pr, "parameters", p.Entries) }

// Triggers holds the ordered build trigger declarations.
type Triggers struct {
	Entries []*TaskStep
	Span    hcl.Range
}

func (t *Triggers) MarshalJSON() ([]byte, error) { return marshalEntries(t.Entries) }
func (t *Triggers) writeSource(pr *printer)      { writeEntrySection(pr, "triggers", t.Entries) }

func marshalEntries(entries []*TaskStep) ([]byte, error) {
	if entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(entries)
}

func writeEntrySection(pr *printer, keyword string, entries []*TaskStep) {
	pr.openf("%s {", keyword)
	for _, ent := range entries {
		ent.writeSource(pr)
	}
	pr.close()
}

// When is the ordered condition list guarding a stage. Conditions are steps
// and may nest further conditions (allOf, anyOf, not) or capture an
// expression block verbatim.
type When struct {
	Conditions []Step
	Span       hcl.Range
}

func (w *When) MarshalJSON() ([]byte, error) {
	if w.Conditions == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w.Conditions)
}

func (w *When) writeSource(pr *printer) {
	pr.openf("when {")
	for _, cond := range w.Conditions {
		cond.writeSource(pr)
	}
	pr.close()
}

// Agent declares where a pipeline or stage runs: a bare type tag like any
// or none, or a type with a configuration map.
type Agent struct {
	Type Key
	// Config holds the type's configuration entries; nil for the bare form.
	Config []NamedArg
	Span   hcl.Range
}

func (a *Agent) MarshalJSON() ([]byte, error) {
	type out struct {
		Type      string     `json:"type"`
		Arguments []NamedArg `json:"arguments,omitempty"`
	}
	return json.Marshal(out{Type: a.Type.Name, Arguments: a.Config})
}

func (a *Agent) writeSource(pr *printer) {
	if a.Config == nil {
		pr.linef("agent %s", a.Type.Name)
		return
	}
	// The nested-block form preserves every config key name through a
	// render/parse cycle, so it is the canonical spelling.
	pr.openf("agent {")
	pr.openf("%s {", a.Type.Name)
	for _, ent := range a.Config {
		pr.linef("%s(%s)", ent.Key.Name, ent.Value.SourceText())
	}
	pr.close()
	pr.close()
}

// BuildCondition pairs a post condition name with the branch of steps to
// run when it holds.
type BuildCondition struct {
	Condition Key
	Branch    *Branch
	Span      hcl.Range
}

func (c *BuildCondition) MarshalJSON() ([]byte, error) {
	type out struct {
		Condition string  `json:"condition"`
		Branch    *Branch `json:"branch"`
	}
	return json.Marshal(out{Condition: c.Condition.Name, Branch: c.Branch})
}

func (c *BuildCondition) writeSource(pr *printer) {
	pr.openf("%s {", c.Condition.Name)
	for _, step := range c.Branch.Steps {
		step.writeSource(pr)
	}
	pr.close()
}

// Post is the ordered build-condition list of a pipeline post section or a
// stage post section.
type Post struct {
	Conditions []*BuildCondition
	Span       hcl.Range
}

func (p *Post) MarshalJSON() ([]byte, error) {
	if p.Conditions == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Conditions)
}

func (p *Post) writeSource(pr *printer) {
	pr.openf("post {")
	for _, cond := range p.Conditions {
		cond.writeSource(pr)
	}
	pr.close()
}
