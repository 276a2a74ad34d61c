package registry

import "github.com/zclconf/go-cty/cty"

// Option customizes the built-in registry.
type Option func(*Static)

// WithToolInstalls supplies the configured tool installations, keyed by
// tool type. Without it the built-in registry has no install data and
// version validation is skipped.
func WithToolInstalls(installs map[string][]string) Option {
	return func(s *Static) { s.Installs = installs }
}

// WithDescriptor registers or replaces a single descriptor.
func WithDescriptor(d *Descriptor) Option {
	return func(s *Static) { s.Descriptors[d.Name] = d }
}

// Builtin returns the static registry of well-known steps, sections,
// directives, agent types, tool types and build conditions.
func Builtin(opts ...Option) *Static {
	s := &Static{
		Descriptors: builtinDescriptors(),
		Agents: map[string][]string{
			"any":        nil,
			"none":       nil,
			"label":      {"label"},
			"node":       {"label", "customWorkspace"},
			"docker":     {"image", "args", "label", "registryUrl", "registryCredentialsId", "customWorkspace", "reuseNode", "alwaysPull"},
			"dockerfile": {"filename", "dir", "label", "additionalBuildArgs", "customWorkspace", "reuseNode"},
		},
		ZeroArgAgents: []string{"any", "none"},
		Tools:         []string{"maven", "jdk", "gradle", "ant"},
		Conditions:    []string{"always", "changed", "success", "unstable", "failure", "aborted"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func builtinDescriptors() map[string]*Descriptor {
	list := []*Descriptor{
		// Build steps.
		{Name: "echo", Params: []Parameter{
			{Name: "message", Type: cty.String, Required: true},
		}},
		{Name: "sh", Params: []Parameter{
			{Name: "script", Type: cty.String, Required: true},
			{Name: "returnStdout", Type: cty.Bool},
			{Name: "returnStatus", Type: cty.Bool},
			{Name: "encoding", Type: cty.String},
		}},
		{Name: "bat", Params: []Parameter{
			{Name: "script", Type: cty.String, Required: true},
			{Name: "returnStdout", Type: cty.Bool},
			{Name: "returnStatus", Type: cty.Bool},
		}},
		{Name: "error", Params: []Parameter{
			{Name: "message", Type: cty.String, Required: true},
		}},
		{Name: "tool", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "type", Type: cty.String},
		}},
		{Name: "sleep", Params: []Parameter{
			{Name: "time", Type: cty.Number, Required: true},
			{Name: "unit", Type: cty.String},
		}},
		{Name: "checkout", Params: []Parameter{
			{Name: "scm", Type: cty.DynamicPseudoType, Required: true},
			{Name: "poll", Type: cty.Bool},
			{Name: "changelog", Type: cty.Bool},
		}},
		{Name: "git", Params: []Parameter{
			{Name: "url", Type: cty.String, Required: true},
			{Name: "branch", Type: cty.String},
			{Name: "credentialsId", Type: cty.String},
			{Name: "poll", Type: cty.Bool},
		}},
		{Name: "archiveArtifacts", Params: []Parameter{
			{Name: "artifacts", Type: cty.String, Required: true},
			{Name: "excludes", Type: cty.String},
			{Name: "fingerprint", Type: cty.Bool},
			{Name: "allowEmptyArchive", Type: cty.Bool},
		}},
		{Name: "junit", Params: []Parameter{
			{Name: "testResults", Type: cty.String, Required: true},
			{Name: "allowEmptyResults", Type: cty.Bool},
			{Name: "keepLongStdio", Type: cty.Bool},
		}},
		{Name: "readFile", Params: []Parameter{
			{Name: "file", Type: cty.String, Required: true},
			{Name: "encoding", Type: cty.String},
		}},
		{Name: "writeFile", Params: []Parameter{
			{Name: "file", Type: cty.String, Required: true},
			{Name: "text", Type: cty.String, Required: true},
			{Name: "encoding", Type: cty.String},
		}},
		{Name: "stash", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "includes", Type: cty.String},
			{Name: "excludes", Type: cty.String},
		}},
		{Name: "unstash", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
		}},
		{Name: "deleteDir"},
		{Name: "pwd", Params: []Parameter{
			{Name: "tmp", Type: cty.Bool},
		}},
		{Name: "mail", Params: []Parameter{
			{Name: "subject", Type: cty.String, Required: true},
			{Name: "body", Type: cty.String, Required: true},
			{Name: "to", Type: cty.String},
			{Name: "cc", Type: cty.String},
			{Name: "from", Type: cty.String},
		}},
		{Name: "input", Params: []Parameter{
			{Name: "message", Type: cty.String, Required: true},
			{Name: "id", Type: cty.String},
			{Name: "ok", Type: cty.String},
			{Name: "submitter", Type: cty.String},
		}},
		{Name: "build", Params: []Parameter{
			{Name: "job", Type: cty.String, Required: true},
			{Name: "parameters", Type: cty.DynamicPseudoType},
			{Name: "wait", Type: cty.Bool},
			{Name: "propagate", Type: cty.Bool},
		}},
		{Name: "milestone", Params: []Parameter{
			{Name: "ordinal", Type: cty.Number},
			{Name: "label", Type: cty.String},
		}},

		// Block-scoped steps.
		{Name: "timeout", TakesBlock: true, Params: []Parameter{
			{Name: "time", Type: cty.Number, Required: true},
			{Name: "unit", Type: cty.String},
			{Name: "activity", Type: cty.Bool},
		}},
		{Name: "retry", TakesBlock: true, Params: []Parameter{
			{Name: "count", Type: cty.Number, Required: true},
		}},
		{Name: "dir", TakesBlock: true, Params: []Parameter{
			{Name: "path", Type: cty.String, Required: true},
		}},
		{Name: "withEnv", TakesBlock: true, Params: []Parameter{
			{Name: "overrides", Type: cty.DynamicPseudoType, Required: true},
		}},
		{Name: "withCredentials", TakesBlock: true, Params: []Parameter{
			{Name: "bindings", Type: cty.DynamicPseudoType, Required: true},
		}},
		{Name: "node", TakesBlock: true, Params: []Parameter{
			{Name: "label", Type: cty.String},
		}},
		{Name: "waitUntil", TakesBlock: true},
		{Name: "script", TakesBlock: true},

		// Declarative options.
		{Name: "buildDiscarder", Params: []Parameter{
			{Name: "strategy", Type: cty.DynamicPseudoType, Required: true},
		}},
		{Name: "disableConcurrentBuilds"},
		{Name: "overrideIndexTriggers", Params: []Parameter{
			{Name: "enableTriggers", Type: cty.Bool, Required: true},
		}},
		{Name: "skipDefaultCheckout", Params: []Parameter{
			{Name: "value", Type: cty.Bool},
		}},
		{Name: "skipStagesAfterUnstable"},
		{Name: "timestamps"},
		{Name: "quietPeriod", Params: []Parameter{
			{Name: "seconds", Type: cty.Number, Required: true},
		}},
		{Name: "checkoutToSubdirectory", Params: []Parameter{
			{Name: "dir", Type: cty.String, Required: true},
		}},
		{Name: "preserveStashes", Params: []Parameter{
			{Name: "buildCount", Type: cty.Number},
		}},
		{Name: "logRotator", Params: []Parameter{
			{Name: "daysToKeepStr", Type: cty.String},
			{Name: "numToKeepStr", Type: cty.String},
			{Name: "artifactDaysToKeepStr", Type: cty.String},
			{Name: "artifactNumToKeepStr", Type: cty.String},
		}},

		// Triggers.
		{Name: "cron", Params: []Parameter{
			{Name: "spec", Type: cty.String, Required: true},
		}},
		{Name: "pollSCM", Params: []Parameter{
			{Name: "spec", Type: cty.String, Required: true},
		}},
		{Name: "upstream", Params: []Parameter{
			{Name: "upstreamProjects", Type: cty.String, Required: true},
			{Name: "threshold", Type: cty.String},
		}},

		// Build parameters.
		{Name: "string", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "defaultValue", Type: cty.String},
			{Name: "description", Type: cty.String},
		}},
		{Name: "text", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "defaultValue", Type: cty.String},
			{Name: "description", Type: cty.String},
		}},
		{Name: "booleanParam", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "defaultValue", Type: cty.Bool},
			{Name: "description", Type: cty.String},
		}},
		{Name: "choice", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "choices", Type: cty.String},
			{Name: "description", Type: cty.String},
		}},
		{Name: "password", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "defaultValue", Type: cty.String},
			{Name: "description", Type: cty.String},
		}},

		// When conditions.
		{Name: "branch", Params: []Parameter{
			{Name: "pattern", Type: cty.String, Required: true},
		}},
		{Name: "environment", Params: []Parameter{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "value", Type: cty.String, Required: true},
		}},
		{Name: "changelog", Params: []Parameter{
			{Name: "pattern", Type: cty.String, Required: true},
		}},
		{Name: "changeset", Params: []Parameter{
			{Name: "pattern", Type: cty.String, Required: true},
		}},
		{Name: "buildingTag"},
		{Name: "tag", Params: []Parameter{
			{Name: "pattern", Type: cty.String},
		}},
		{Name: "triggeredBy", Params: []Parameter{
			{Name: "cause", Type: cty.String, Required: true},
		}},
		{Name: "expression", TakesBlock: true},
		{Name: "allOf", TakesBlock: true},
		{Name: "anyOf", TakesBlock: true},
		{Name: "not", TakesBlock: true},
	}

	m := make(map[string]*Descriptor, len(list))
	for _, d := range list {
		m[d.Name] = d
	}
	return m
}
