package validator

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/declpipe/internal/diag"
	"github.com/vk/declpipe/internal/model"
	"github.com/vk/declpipe/internal/registry"
)

// blockedSteps are steps that exist in the scripted runtime but have no
// place inside a declarative definition.
var blockedSteps = map[string]string{
	"stage":      "The stage step cannot be used in Declarative Pipelines.",
	"properties": "The properties step cannot be used in Declarative Pipelines.",
	"parallel":   "The parallel step can only be used as the only top-level step in a stage's steps block.",
}

// Validator walks a model tree and reports every rule violation it finds.
// It shares the Reporter with the parse pass, so one read of Diags yields
// the combined finding list.
type Validator struct {
	lookup registry.Lookup
	rep    *diag.Reporter
}

// New builds a validator over the given descriptor source. The lookup is
// memoized per validator, never across them.
func New(lookup registry.Lookup, rep *diag.Reporter) *Validator {
	return &Validator{lookup: registry.Memoize(lookup), rep: rep}
}

// Validate checks the whole pipeline and reports whether this pass found
// no violations. Errors recorded before the call do not affect the result.
func (v *Validator) Validate(p *model.Pipeline) bool {
	before := v.rep.Count()

	if p.Agent == nil {
		v.rep.Errorf(p.Span, "Missing required section 'agent'.")
	} else {
		v.validateAgent(p.Agent)
	}
	if p.Stages == nil {
		v.rep.Errorf(p.Span, "Missing required section 'stages'.")
	} else {
		v.validateStages(p.Stages)
	}
	if p.Environment != nil {
		v.validateEnvironment(p.Environment)
	}
	if p.Tools != nil {
		v.validateTools(p.Tools)
	}
	if p.Options != nil {
		v.validateEntrySection("options", p.Options.Entries, p.Options.Span)
	}
	if p.Parameters != nil {
		v.validateEntrySection("parameters", p.Parameters.Entries, p.Parameters.Span)
	}
	if p.Triggers != nil {
		v.validateEntrySection("triggers", p.Triggers.Entries, p.Triggers.Span)
	}
	if p.Post != nil {
		v.validatePost(p.Post)
	}

	return v.rep.Count() == before
}

func (v *Validator) validateStages(s *model.Stages) {
	if len(s.Stages) == 0 {
		v.rep.Errorf(s.Span, "No stages specified.")
		return
	}
	seen := map[string]bool{}
	for _, st := range s.Stages {
		if st.Name != "" && seen[st.Name] {
			v.rep.Errorf(st.Span, "Duplicate stage name: '%s'.", st.Name)
		}
		seen[st.Name] = true
		v.validateStage(st)
	}
}

func (v *Validator) validateStage(st *model.Stage) {
	if st.Agent != nil {
		v.validateAgent(st.Agent)
	}
	if st.When != nil {
		v.validateWhen(st.When)
	}
	if st.Tools != nil {
		v.validateTools(st.Tools)
	}
	if st.Environment != nil {
		v.validateEnvironment(st.Environment)
	}
	if st.Post != nil {
		v.validatePost(st.Post)
	}

	switch {
	case st.Stages != nil:
		v.validateStages(st.Stages)
	case len(st.Branches) > 0:
		for _, b := range st.Branches {
			v.validateBranch(b)
		}
	default:
		v.rep.Errorf(st.Span, "Nothing to execute within stage '%s'.", st.Name)
	}
}

func (v *Validator) validateBranch(b *model.Branch) {
	if len(b.Steps) == 0 {
		if b.Name == model.DefaultBranchName {
			v.rep.Errorf(b.Span, "No steps specified.")
		} else {
			v.rep.Errorf(b.Span, "No steps specified for branch '%s'.", b.Name)
		}
		return
	}
	for _, s := range b.Steps {
		v.validateStep(s)
	}
}

func (v *Validator) validateStep(step model.Step) {
	if msg, blocked := blockedSteps[step.StepName()]; blocked {
		v.rep.Errorf(step.Range(), "%s", msg)
		return
	}
	switch s := step.(type) {
	case *model.TaskStep:
		v.validateInvocation(s.Name, s.Args, false)
	case *model.TreeStep:
		v.validateInvocation(s.Name, s.Args, true)
		for _, child := range s.Children {
			v.validateStep(child)
		}
	case *model.ScriptBlock:
		// The embedded code is opaque here; the runtime compiles it.
	}
}

// validateInvocation checks a call against its descriptor: unknown
// parameters, missing required ones, constant value types and the
// argument shape itself. Unresolvable names pass, since plugins can
// contribute steps this process has never heard of.
func (v *Validator) validateInvocation(name model.Key, args *model.Arguments, hasBlock bool) {
	desc := v.lookup.Resolve(name.Name)
	if desc == nil {
		return
	}
	if hasBlock && !desc.TakesBlock {
		v.rep.Errorf(name.Span, "The %s step does not take a block of nested steps.", name.Name)
	}

	switch args.Kind {
	case model.NamedArgs:
		for _, na := range args.Named {
			param, ok := desc.Param(na.Key.Name)
			if !ok {
				if hint := nearest(na.Key.Name, desc.ParamNames()); hint != "" {
					v.rep.Errorf(na.Key.Span, "Invalid parameter '%s', did you mean '%s'?", na.Key.Name, hint)
				} else {
					v.rep.Errorf(na.Key.Span, "Invalid parameter '%s'.", na.Key.Name)
				}
				continue
			}
			v.checkValueType(param, na.Value)
		}
		for _, p := range desc.Params {
			if p.Required && args.Find(p.Name) == nil {
				v.rep.Errorf(args.Span, "Missing required parameter: '%s'.", p.Name)
			}
		}
	case model.SingleArg:
		sole, ok := desc.SoleRequiredParameter()
		if !ok && !desc.TakesBlock {
			v.rep.Errorf(args.Span, "The %s step should use named parameters instead of a single argument.", name.Name)
			return
		}
		if param, found := desc.Param(sole); ok && found {
			v.checkValueType(param, args.Single)
		}
	case model.PositionalArgs:
		v.rep.Errorf(args.Span, "The %s step does not support positional arguments; use named parameters.", name.Name)
	}
}

// checkValueType verifies a constant argument converts to the parameter's
// declared type. Placeholders are resolved at run time and pass here.
func (v *Validator) checkValueType(param registry.Parameter, val *model.Value) {
	if !val.IsConstant() {
		return
	}
	if param.Type == cty.NilType || param.Type == cty.DynamicPseudoType {
		return
	}
	if _, err := convert.Convert(val.Const, param.Type); err != nil {
		v.rep.Errorf(val.Span, "Expecting %s for parameter '%s' but got '%s' instead.",
			friendlyType(param.Type), param.Name, val.SourceText())
	}
}

func friendlyType(t cty.Type) string {
	switch t {
	case cty.String:
		return "a string"
	case cty.Number:
		return "a number"
	case cty.Bool:
		return "a boolean"
	}
	return t.FriendlyName()
}

func (v *Validator) validateAgent(a *model.Agent) {
	if a.Type.Name == "" {
		// Already reported while building the model.
		return
	}
	types := v.lookup.AgentTypes()
	if types == nil {
		return
	}
	if !contains(types, a.Type.Name) {
		v.rep.Errorf(a.Type.Span, "Invalid agent type '%s' specified. Must be one of %v.", a.Type.Name, types)
		return
	}
	if a.Config == nil {
		if zero := v.lookup.ZeroArgAgentTypes(); zero != nil && !contains(zero, a.Type.Name) {
			v.rep.Errorf(a.Type.Span, "The %s agent type requires a configuration block.", a.Type.Name)
		}
		return
	}
	keys := v.lookup.AgentConfigKeys(a.Type.Name)
	if keys == nil {
		return
	}
	for _, ent := range a.Config {
		if contains(keys, ent.Key.Name) {
			continue
		}
		if hint := nearest(ent.Key.Name, keys); hint != "" {
			v.rep.Errorf(ent.Key.Span, "Invalid config option '%s' for agent type '%s', did you mean '%s'?",
				ent.Key.Name, a.Type.Name, hint)
		} else {
			v.rep.Errorf(ent.Key.Span, "Invalid config option '%s' for agent type '%s'. Valid config options: %v.",
				ent.Key.Name, a.Type.Name, keys)
		}
	}
}

func (v *Validator) validateWhen(w *model.When) {
	if len(w.Conditions) == 0 {
		v.rep.Errorf(w.Span, "Empty when section, remove the section or add conditions to it.")
		return
	}
	for _, cond := range w.Conditions {
		v.validateStep(cond)
	}
}

func (v *Validator) validateEnvironment(e *model.Environment) {
	if len(e.Entries) == 0 {
		v.rep.Errorf(e.Span, "No variables specified for environment.")
	}
}

func (v *Validator) validateTools(t *model.Tools) {
	if len(t.Entries) == 0 {
		v.rep.Errorf(t.Span, "No tools specified.")
		return
	}
	types := v.lookup.ToolTypes()
	for _, ent := range t.Entries {
		if types != nil && !contains(types, ent.Key.Name) {
			v.rep.Errorf(ent.Key.Span, "Invalid tool type '%s'. Valid tool types: %v.", ent.Key.Name, types)
			continue
		}
		installs := v.lookup.ToolInstalls(ent.Key.Name)
		if installs == nil || !ent.Value.IsConstant() || ent.Value.Const.Type() != cty.String {
			continue
		}
		version := ent.Value.Const.AsString()
		if contains(installs, version) {
			continue
		}
		if hint := nearest(version, installs); hint != "" {
			v.rep.Errorf(ent.Value.Span, "Tool type '%s' does not have an install of '%s' configured - did you mean '%s'?",
				ent.Key.Name, version, hint)
		} else {
			v.rep.Errorf(ent.Value.Span, "Tool type '%s' does not have an install of '%s' configured.",
				ent.Key.Name, version)
		}
	}
}

func (v *Validator) validateEntrySection(keyword string, entries []*model.TaskStep, span hcl.Range) {
	if len(entries) == 0 {
		v.rep.Errorf(span, "Cannot have an empty %s section.", keyword)
		return
	}
	for _, ent := range entries {
		v.validateInvocation(ent.Name, ent.Args, false)
	}
}

func (v *Validator) validatePost(p *model.Post) {
	if len(p.Conditions) == 0 {
		v.rep.Errorf(p.Span, "Cannot have an empty post section.")
		return
	}
	valid := v.lookup.BuildConditions()
	seen := map[string]bool{}
	for _, c := range p.Conditions {
		if seen[c.Condition.Name] {
			v.rep.Errorf(c.Condition.Span, "Duplicate build condition name: '%s'.", c.Condition.Name)
		}
		seen[c.Condition.Name] = true
		if valid != nil && !contains(valid, c.Condition.Name) {
			v.rep.Errorf(c.Condition.Span, "Invalid condition '%s' - valid conditions are %v.", c.Condition.Name, valid)
		}
		if len(c.Branch.Steps) == 0 {
			v.rep.Errorf(c.Span, "No steps specified for the %s condition.", c.Condition.Name)
			continue
		}
		for _, s := range c.Branch.Steps {
			v.validateStep(s)
		}
	}
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
