// Package testutil provides the shared parse-and-validate harness for
// tests across the module, so individual tests state only their input
// source and their expectations.
package testutil

import (
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/require"

	"github.com/vk/declpipe/internal/diag"
	"github.com/vk/declpipe/internal/model"
	"github.com/vk/declpipe/internal/parser"
	"github.com/vk/declpipe/internal/registry"
	"github.com/vk/declpipe/internal/syntax"
	"github.com/vk/declpipe/internal/validator"
)

// Result bundles everything a pipeline source produced on its way through
// the front half: the model, the structural error (if any) and the full
// finding list.
type Result struct {
	Pipeline *model.Pipeline
	Err      error
	Diags    hcl.Diagnostics
	Valid    bool
}

// Parse runs the syntax and model parsers over src with the built-in
// registry. Validation is not run; see ParseAndValidate.
func Parse(t *testing.T, src string) *Result {
	t.Helper()
	return run(t, src, registry.Builtin(), false)
}

// ParseWith is Parse with a caller-supplied registry, for tests that need
// specific descriptors or an offline registry.
func ParseWith(t *testing.T, src string, lookup registry.Lookup) *Result {
	t.Helper()
	return run(t, src, lookup, false)
}

// ParseAndValidate runs the full front half: syntax parse, model parse and
// validation, with the built-in registry.
func ParseAndValidate(t *testing.T, src string) *Result {
	t.Helper()
	return run(t, src, registry.Builtin(), true)
}

// ParseAndValidateWith is ParseAndValidate with a caller-supplied registry.
func ParseAndValidateWith(t *testing.T, src string, lookup registry.Lookup) *Result {
	t.Helper()
	return run(t, src, lookup, true)
}

func run(t *testing.T, src string, lookup registry.Lookup, validate bool) *Result {
	t.Helper()

	rep := diag.NewReporter()
	mod, file, parseDiags := syntax.Parse("test.jenkinsfile", []byte(src))
	rep.Extend(parseDiags)
	require.NotNil(t, mod, "syntax parse produced no module: %s", parseDiags.Error())

	pipe, err := parser.New(file, lookup, rep).Parse(mod)
	res := &Result{Pipeline: pipe, Err: err}
	if validate && pipe != nil {
		res.Valid = validator.New(lookup, rep).Validate(pipe)
	}
	res.Diags = rep.Diags()
	return res
}

// RequireValid parses and validates src and fails the test on any finding.
func RequireValid(t *testing.T, src string) *model.Pipeline {
	t.Helper()
	res := ParseAndValidate(t, src)
	require.NotNil(t, res.Pipeline, "expected a pipeline model")
	require.True(t, res.Valid, "expected a valid pipeline, got findings:\n%s", DiagText(res.Diags))
	return res.Pipeline
}

// ErrorMessages extracts the detail text of every error diagnostic.
func ErrorMessages(diags hcl.Diagnostics) []string {
	var out []string
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Detail
		if msg == "" {
			msg = d.Summary
		}
		out = append(out, msg)
	}
	return out
}

// RequireErrorContains asserts that some error diagnostic contains want.
func RequireErrorContains(t *testing.T, diags hcl.Diagnostics, want string) {
	t.Helper()
	for _, msg := range ErrorMessages(diags) {
		if strings.Contains(msg, want) {
			return
		}
	}
	require.Failf(t, "missing expected error", "no diagnostic contains %q; got:\n%s", want, DiagText(diags))
}

// DiagText renders diagnostics one per line for failure messages.
func DiagText(diags hcl.Diagnostics) string {
	out := ""
	for _, d := range diags {
		out += " - " + d.Error() + "\n"
	}
	return out
}
