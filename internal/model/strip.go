package model

import "github.com/hashicorp/hcl/v2"

// StripSpans returns a deep copy of the tree with every source span
// cleared. Spans are advisory diagnostics metadata; two trees that differ
// only in spans describe the same pipeline, and stripped trees are what get
// compared or stored.
func StripSpans(p *Pipeline) *Pipeline {
	if p == nil {
		return nil
	}
	return &Pipeline{
		Stages:      stripStages(p.Stages),
		Agent:       stripAgent(p.Agent),
		Environment: stripEnvironment(p.Environment),
		Tools:       stripTools(p.Tools),
		Options:     stripOptions(p.Options),
		Parameters:  stripParameters(p.Parameters),
		Triggers:    stripTriggers(p.Triggers),
		Post:        stripPost(p.Post),
	}
}

func stripStages(s *Stages) *Stages {
	if s == nil {
		return nil
	}
	out := &Stages{}
	for _, st := range s.Stages {
		out.Stages = append(out.Stages, stripStage(st))
	}
	return out
}

func stripStage(s *Stage) *Stage {
	if s == nil {
		return nil
	}
	out := &Stage{
		Name:        s.Name,
		Agent:       stripAgent(s.Agent),
		When:        stripWhen(s.When),
		Tools:       stripTools(s.Tools),
		Environment: stripEnvironment(s.Environment),
		Post:        stripPost(s.Post),
		Stages:      stripStages(s.Stages),
	}
	if s.FailFast != nil {
		ff := *s.FailFast
		out.FailFast = &ff
	}
	for _, b := range s.Branches {
		out.Branches = append(out.Branches, stripBranch(b))
	}
	return out
}

func stripBranch(b *Branch) *Branch {
	if b == nil {
		return nil
	}
	out := &Branch{Name: b.Name}
	for _, st := range b.Steps {
		out.Steps = append(out.Steps, stripStep(st))
	}
	return out
}

func stripStep(s Step) Step {
	switch s := s.(type) {
	case *TaskStep:
		return &TaskStep{Name: stripKey(s.Name), Args: stripArgs(s.Args)}
	case *TreeStep:
		out := &TreeStep{Name: stripKey(s.Name), Args: stripArgs(s.Args)}
		for _, c := range s.Children {
			out.Children = append(out.Children, stripStep(c))
		}
		return out
	case *ScriptBlock:
		return &ScriptBlock{Name: stripKey(s.Name), Source: s.Source}
	}
	return s
}

func stripWhen(w *When) *When {
	if w == nil {
		return nil
	}
	out := &When{}
	for _, c := range w.Conditions {
		out.Conditions = append(out.Conditions, stripStep(c))
	}
	return out
}

func stripAgent(a *Agent) *Agent {
	if a == nil {
		return nil
	}
	out := &Agent{Type: stripKey(a.Type)}
	if a.Config != nil {
		out.Config = make([]NamedArg, len(a.Config))
		for i, na := range a.Config {
			out.Config[i] = NamedArg{Key: stripKey(na.Key), Value: stripValue(na.Value)}
		}
	}
	return out
}

func stripEnvironment(e *Environment) *Environment {
	if e == nil {
		return nil
	}
	out := &Environment{}
	for _, ent := range e.Entries {
		out.Entries = append(out.Entries, EnvEntry{Key: stripKey(ent.Key), Value: stripValue(ent.Value)})
	}
	return out
}

func stripTools(t *Tools) *Tools {
	if t == nil {
		return nil
	}
	out := &Tools{}
	for _, ent := range t.Entries {
		out.Entries = append(out.Entries, ToolEntry{Key: stripKey(ent.Key), Value: stripValue(ent.Value)})
	}
	return out
}

func stripOptions(o *Options) *Options {
	if o == nil {
		return nil
	}
	return &Options{Entries: stripEntries(o.Entries)}
}

func stripParameters(p *Parameters) *Parameters {
	if p == nil {
		return nil
	}
	return &Parameters{Entries: stripEntries(p.Entries)}
}

func stripTriggers(t *Triggers) *Triggers {
	if t == nil {
		return nil
	}
	return &Triggers{Entries: stripEntries(t.Entries)}
}

func stripEntries(entries []*TaskStep) []*TaskStep {
	var out []*TaskStep
	for _, e := range entries {
		out = append(out, &TaskStep{Name: stripKey(e.Name), Args: stripArgs(e.Args)})
	}
	return out
}

func stripPost(p *Post) *Post {
	if p == nil {
		return nil
	}
	out := &Post{}
	for _, c := range p.Conditions {
		out.Conditions = append(out.Conditions, &BuildCondition{
			Condition: stripKey(c.Condition),
			Branch:    stripBranch(c.Branch),
		})
	}
	return out
}

func stripArgs(a *Arguments) *Arguments {
	if a == nil {
		return nil
	}
	out := &Arguments{Kind: a.Kind}
	switch a.Kind {
	case SingleArg:
		out.Single = stripValue(a.Single)
	case PositionalArgs:
		for _, v := range a.Positional {
			out.Positional = append(out.Positional, stripValue(v))
		}
	default:
		for _, na := range a.Named {
			out.Named = append(out.Named, NamedArg{Key: stripKey(na.Key), Value: stripValue(na.Value)})
		}
	}
	return out
}

func stripValue(v *Value) *Value {
	if v == nil {
		return nil
	}
	return &Value{Const: v.Const, Source: v.Source}
}

func stripKey(k Key) Key {
	return Key{Name: k.Name, Span: hcl.Range{}}
}
