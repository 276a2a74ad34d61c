package model

import (
	"encoding/json"

	"github.com/hashicorp/hcl/v2"
)

// DefaultBranchName names the implicit branch of a non-parallel stage body.
const DefaultBranchName = "default"

// Branch is one sequential line of step execution within a stage or post
// condition.
type Branch struct {
	Name  string
	Steps []Step
	Span  hcl.Range
}

func (b *Branch) MarshalJSON() ([]byte, error) {
	type out struct {
		Name  string `json:"name"`
		Steps []Step `json:"steps"`
	}
	return json.Marshal(out{Name: b.Name, Steps: b.Steps})
}

// Stage is a named unit of work: sections plus either branches of steps or
// a nested stage group, never both.
type Stage struct {
	Name        string
	Agent       *Agent
	When        *When
	Tools       *Tools
	Environment *Environment
	Post        *Post
	FailFast    *bool
	Branches    []*Branch
	Stages      *Stages
	Span        hcl.Range
}

func (s *Stage) MarshalJSON() ([]byte, error) {
	type out struct {
		Name        string       `json:"name"`
		Branches    []*Branch    `json:"branches,omitempty"`
		Stages      *Stages      `json:"stages,omitempty"`
		FailFast    *bool        `json:"failFast,omitempty"`
		Agent       *Agent       `json:"agent,omitempty"`
		When        *When        `json:"when,omitempty"`
		Post        *Post        `json:"post,omitempty"`
		Tools       *Tools       `json:"tools,omitempty"`
		Environment *Environment `json:"environment,omitempty"`
	}
	return json.Marshal(out{
		Name:        s.Name,
		Branches:    s.Branches,
		Stages:      s.Stages,
		FailFast:    s.FailFast,
		Agent:       s.Agent,
		When:        s.When,
		Post:        s.Post,
		Tools:       s.Tools,
		Environment: s.Environment,
	})
}

func (s *Stage) writeSource(pr *printer) {
	pr.openf("stage(%s) {", quoteSingle(s.Name))
	if s.Agent != nil {
		s.Agent.writeSource(pr)
	}
	if s.When != nil {
		s.When.writeSource(pr)
	}
	if s.Tools != nil {
		s.Tools.writeSource(pr)
	}
	if s.Environment != nil {
		s.Environment.writeSource(pr)
	}
	switch {
	case s.Stages != nil:
		s.Stages.writeSource(pr)
	case len(s.Branches) > 1:
		pr.openf("steps {")
		pr.openf("parallel(")
		for i, b := range s.Branches {
			pr.openf("%s: {", quoteSingle(b.Name))
			for _, step := range b.Steps {
				step.writeSource(pr)
			}
			pr.indent--
			suffix := ","
			if i == len(s.Branches)-1 && s.FailFast == nil {
				suffix = ""
			}
			pr.linef("}%s", suffix)
		}
		if s.FailFast != nil {
			pr.linef("failFast: %t", *s.FailFast)
		}
		pr.indent--
		pr.linef(")")
		pr.close()
	case len(s.Branches) == 1:
		pr.openf("steps {")
		for _, step := range s.Branches[0].Steps {
			step.writeSource(pr)
		}
		pr.close()
	default:
		pr.openf("steps {")
		pr.close()
	}
	if s.Post != nil {
		pr.openf("post {")
		for _, cond := range s.Post.Conditions {
			cond.writeSource(pr)
		}
		pr.close()
	}
	pr.close()
}

// Stages is an ordered stage sequence: the pipeline's top-level stages
// section or a stage group nested inside a stage.
type Stages struct {
	Stages []*Stage
	Span   hcl.Range
}

func (s *Stages) MarshalJSON() ([]byte, error) {
	if s.Stages == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Stages)
}

func (s *Stages) writeSource(pr *printer) {
	pr.openf("stages {")
	for _, st := range s.Stages {
		st.writeSource(pr)
	}
	pr.close()
}
