package registry

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Parameter describes one named parameter of a registered symbol: its
// erased value type and whether the caller must supply it.
type Parameter struct {
	Name     string
	Type     cty.Type
	Required bool
}

// Descriptor is the metadata for one registered symbol.
type Descriptor struct {
	Name string
	// Params is the ordered parameter model.
	Params []Parameter
	// TakesBlock marks symbols that accept a trailing block of nested
	// steps, like timeout or retry.
	TakesBlock bool
}

// SoleRequiredParameter returns the name of the descriptor's single
// required parameter, if it has exactly one. Steps with a sole required
// parameter may be called with a single unnamed argument.
func (d *Descriptor) SoleRequiredParameter() (string, bool) {
	var found string
	for _, p := range d.Params {
		if !p.Required {
			continue
		}
		if found != "" {
			return "", false
		}
		found = p.Name
	}
	return found, found != ""
}

// Param returns the named parameter, if declared.
func (d *Descriptor) Param(name string) (Parameter, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// ParamNames returns the declared parameter names in order.
func (d *Descriptor) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return names
}

// Lookup is the descriptor source the parser and validator consume. Any
// enumeration method may return nil, meaning the data is unavailable (for
// example when validating offline); descriptor-dependent checks must then
// be skipped rather than failed.
type Lookup interface {
	// Resolve returns the descriptor registered under name, or nil.
	Resolve(name string) *Descriptor

	// AgentTypes enumerates all registered agent type names.
	AgentTypes() []string
	// ZeroArgAgentTypes enumerates agent types usable as a bare symbol,
	// like any or none.
	ZeroArgAgentTypes() []string
	// AgentConfigKeys enumerates the allowed configuration keys for an
	// agent type, or nil for unknown types.
	AgentConfigKeys(agentType string) []string

	// ToolTypes enumerates the registered tool type names.
	ToolTypes() []string
	// ToolInstalls enumerates the configured installations of a tool
	// type. A nil result means no live install data is available and
	// version checks must be skipped.
	ToolInstalls(toolType string) []string

	// BuildConditions enumerates the valid post/postStage condition names.
	BuildConditions() []string
}

// Static is a Lookup backed by in-memory tables. The zero value resolves
// nothing and enumerates nothing, which the validator treats as "offline".
type Static struct {
	Descriptors   map[string]*Descriptor
	Agents        map[string][]string // agent type -> allowed config keys
	ZeroArgAgents []string
	Tools         []string
	Installs      map[string][]string // tool type -> configured installs
	Conditions    []string
}

func (s *Static) Resolve(name string) *Descriptor {
	return s.Descriptors[name]
}

func (s *Static) AgentTypes() []string {
	if s.Agents == nil {
		return nil
	}
	names := make([]string, 0, len(s.Agents))
	for name := range s.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Static) ZeroArgAgentTypes() []string { return s.ZeroArgAgents }

func (s *Static) AgentConfigKeys(agentType string) []string {
	if s.Agents == nil {
		return nil
	}
	return s.Agents[agentType]
}

func (s *Static) ToolTypes() []string { return s.Tools }

func (s *Static) ToolInstalls(toolType string) []string {
	if s.Installs == nil {
		return nil
	}
	return s.Installs[toolType]
}

func (s *Static) BuildConditions() []string { return s.Conditions }
