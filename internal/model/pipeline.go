package model

import (
	"encoding/json"

	"github.com/hashicorp/hcl/v2"
)

// Pipeline is the root of the model tree: one fully recognized declarative
// pipeline definition. Each section appears at most once.
type Pipeline struct {
	Stages      *Stages
	Agent       *Agent
	Environment *Environment
	Tools       *Tools
	Options     *Options
	Parameters  *Parameters
	Triggers    *Triggers
	Post        *Post
	Span        hcl.Range
}

func (p *Pipeline) MarshalJSON() ([]byte, error) {
	type out struct {
		Stages      *Stages      `json:"stages,omitempty"`
		Agent       *Agent       `json:"agent,omitempty"`
		Environment *Environment `json:"environment,omitempty"`
		Tools       *Tools       `json:"tools,omitempty"`
		Options     *Options     `json:"options,omitempty"`
		Parameters  *Parameters  `json:"parameters,omitempty"`
		Triggers    *Triggers    `json:"triggers,omitempty"`
		Post        *Post        `json:"post,omitempty"`
	}
	return json.Marshal(out{
		Stages:      p.Stages,
		Agent:       p.Agent,
		Environment: p.Environment,
		Tools:       p.Tools,
		Options:     p.Options,
		Parameters:  p.Parameters,
		Triggers:    p.Triggers,
		Post:        p.Post,
	})
}

// ToJSON serializes the tree in the persistence envelope used by the
// conversion endpoints: {"pipeline": {...}}.
func (p *Pipeline) ToJSON() ([]byte, error) {
	return json.MarshalIndent(map[string]*Pipeline{"pipeline": p}, "", "  ")
}

// SourceText renders the whole definition back into canonical pipeline
// source. Rendering a parsed model and re-parsing the result yields an
// equal model; byte identity with arbitrary hand-written input is not a
// goal since whitespace and comments are not modeled.
func (p *Pipeline) SourceText() string {
	pr := &printer{}
	pr.openf("pipeline {")
	if p.Agent != nil {
		p.Agent.writeSource(pr)
	}
	if p.Environment != nil {
		p.Environment.writeSource(pr)
	}
	if p.Tools != nil {
		p.Tools.writeSource(pr)
	}
	if p.Options != nil {
		p.Options.writeSource(pr)
	}
	if p.Parameters != nil {
		p.Parameters.writeSource(pr)
	}
	if p.Triggers != nil {
		p.Triggers.writeSource(pr)
	}
	if p.Stages != nil {
		p.Stages.writeSource(pr)
	}
	if p.Post != nil {
		p.Post.writeSource(pr)
	}
	pr.close()
	return pr.String()
}
