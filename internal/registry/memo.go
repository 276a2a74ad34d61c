package registry

// Memoized wraps a Lookup and caches every answer. Descriptor availability
// can change between runs, so one Memoized instance must serve exactly one
// parse/validate cycle and never be shared across cycles or goroutines.
type Memoized struct {
	inner Lookup

	resolved   map[string]*Descriptor
	agentKeys  map[string][]string
	installs   map[string][]string
	agentTypes []string
	zeroArg    []string
	toolTypes  []string
	conditions []string
	agentsDone bool
	zeroDone   bool
	toolsDone  bool
	condsDone  bool
}

// Memoize wraps lookup in a single-parse cache.
func Memoize(lookup Lookup) *Memoized {
	return &Memoized{
		inner:     lookup,
		resolved:  make(map[string]*Descriptor),
		agentKeys: make(map[string][]string),
		installs:  make(map[string][]string),
	}
}

func (m *Memoized) Resolve(name string) *Descriptor {
	if d, ok := m.resolved[name]; ok {
		return d
	}
	d := m.inner.Resolve(name)
	m.resolved[name] = d
	return d
}

func (m *Memoized) AgentTypes() []string {
	if !m.agentsDone {
		m.agentTypes = m.inner.AgentTypes()
		m.agentsDone = true
	}
	return m.agentTypes
}

func (m *Memoized) ZeroArgAgentTypes() []string {
	if !m.zeroDone {
		m.zeroArg = m.inner.ZeroArgAgentTypes()
		m.zeroDone = true
	}
	return m.zeroArg
}

func (m *Memoized) AgentConfigKeys(agentType string) []string {
	if keys, ok := m.agentKeys[agentType]; ok {
		return keys
	}
	keys := m.inner.AgentConfigKeys(agentType)
	m.agentKeys[agentType] = keys
	return keys
}

func (m *Memoized) ToolTypes() []string {
	if !m.toolsDone {
		m.toolTypes = m.inner.ToolTypes()
		m.toolsDone = true
	}
	return m.toolTypes
}

func (m *Memoized) ToolInstalls(toolType string) []string {
	if installs, ok := m.installs[toolType]; ok {
		return installs
	}
	installs := m.inner.ToolInstalls(toolType)
	m.installs[toolType] = installs
	return installs
}

func (m *Memoized) BuildConditions() []string {
	if !m.condsDone {
		m.conditions = m.inner.BuildConditions()
		m.condsDone = true
	}
	return m.conditions
}
