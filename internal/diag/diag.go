// Package diag collects model parse and validation findings as
// hcl.Diagnostics. The collector is a pure sink: reporting never halts the
// caller, which is what lets one pass surface every independent problem in a
// pipeline definition.
package diag

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Reporter accumulates diagnostics. One Reporter serves a single parse plus
// its validation pass; results are read back with Diags.
type Reporter struct {
	diags hcl.Diagnostics
}

// NewReporter returns an empty collector.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Errorf records an error at rng. A zero range is recorded without a
// subject, which the text renderer tolerates.
func (r *Reporter) Errorf(rng hcl.Range, format string, args ...any) {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid pipeline definition",
		Detail:   fmt.Sprintf(format, args...),
	}
	if rng != (hcl.Range{}) {
		sub := rng
		d.Subject = &sub
	}
	r.diags = append(r.diags, d)
}

// Extend merges already-built diagnostics, e.g. from the syntax parser.
func (r *Reporter) Extend(diags hcl.Diagnostics) {
	r.diags = append(r.diags, diags...)
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r *Reporter) HasErrors() bool {
	return r.diags.HasErrors()
}

// Count returns the number of recorded diagnostics.
func (r *Reporter) Count() int {
	return len(r.diags)
}

// Diags returns the accumulated diagnostics in report order.
func (r *Reporter) Diags() hcl.Diagnostics {
	return r.diags
}
