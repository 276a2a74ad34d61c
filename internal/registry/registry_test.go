package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestSoleRequiredParameter(t *testing.T) {
	testCases := []struct {
		name     string
		desc     *Descriptor
		expected string
		ok       bool
	}{
		{
			name: "exactly one required",
			desc: &Descriptor{Params: []Parameter{
				{Name: "message", Type: cty.String, Required: true},
				{Name: "encoding", Type: cty.String},
			}},
			expected: "message",
			ok:       true,
		},
		{
			name: "two required",
			desc: &Descriptor{Params: []Parameter{
				{Name: "subject", Required: true},
				{Name: "body", Required: true},
			}},
			ok: false,
		},
		{
			name: "none required",
			desc: &Descriptor{Params: []Parameter{{Name: "tmp"}}},
			ok:   false,
		},
		{
			name: "no parameters",
			desc: &Descriptor{},
			ok:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sole, ok := tc.desc.SoleRequiredParameter()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, sole)
		})
	}
}

func TestBuiltinContents(t *testing.T) {
	reg := Builtin()

	echo := reg.Resolve("echo")
	require.NotNil(t, echo)
	sole, ok := echo.SoleRequiredParameter()
	require.True(t, ok)
	assert.Equal(t, "message", sole)

	retry := reg.Resolve("retry")
	require.NotNil(t, retry)
	assert.True(t, retry.TakesBlock)

	assert.Nil(t, reg.Resolve("definitelyNotAStep"))

	types := reg.AgentTypes()
	assert.Equal(t, []string{"any", "docker", "dockerfile", "label", "node", "none"}, types)
	assert.Equal(t, []string{"any", "none"}, reg.ZeroArgAgentTypes())
	assert.Contains(t, reg.AgentConfigKeys("docker"), "image")
	assert.Nil(t, reg.AgentConfigKeys("bananas"))

	assert.Contains(t, reg.ToolTypes(), "maven")
	assert.Nil(t, reg.ToolInstalls("maven"), "no install data without the option")

	assert.Equal(t, []string{"always", "changed", "success", "unstable", "failure", "aborted"}, reg.BuildConditions())
}

func TestBuiltinOptions(t *testing.T) {
	reg := Builtin(
		WithToolInstalls(map[string][]string{"maven": {"M3", "M4"}}),
		WithDescriptor(&Descriptor{Name: "slackSend", Params: []Parameter{
			{Name: "channel", Type: cty.String, Required: true},
		}}),
	)

	assert.Equal(t, []string{"M3", "M4"}, reg.ToolInstalls("maven"))
	require.NotNil(t, reg.Resolve("slackSend"))
}

func TestOfflineStaticEnumeratesNothing(t *testing.T) {
	var s Static
	assert.Nil(t, s.Resolve("echo"))
	assert.Nil(t, s.AgentTypes())
	assert.Nil(t, s.AgentConfigKeys("docker"))
	assert.Nil(t, s.ToolInstalls("maven"))
	assert.Nil(t, s.BuildConditions())
}

func TestMemoizedCachesPerInstance(t *testing.T) {
	calls := 0
	base := &countingLookup{inner: Builtin(), resolves: &calls}

	memo := Memoize(base)
	first := memo.Resolve("echo")
	second := memo.Resolve("echo")
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls, "second resolve must come from the cache")

	// A fresh memoized view consults the source again.
	Memoize(base).Resolve("echo")
	assert.Equal(t, 2, calls)
}

// countingLookup counts Resolve calls that reach the underlying source.
type countingLookup struct {
	inner    Lookup
	resolves *int
}

func (c *countingLookup) Resolve(name string) *Descriptor {
	*c.resolves++
	return c.inner.Resolve(name)
}

func (c *countingLookup) AgentTypes() []string              { return c.inner.AgentTypes() }
func (c *countingLookup) ZeroArgAgentTypes() []string       { return c.inner.ZeroArgAgentTypes() }
func (c *countingLookup) AgentConfigKeys(t string) []string { return c.inner.AgentConfigKeys(t) }
func (c *countingLookup) ToolTypes() []string               { return c.inner.ToolTypes() }
func (c *countingLookup) ToolInstalls(t string) []string    { return c.inner.ToolInstalls(t) }
func (c *countingLookup) BuildConditions() []string         { return c.inner.BuildConditions() }
