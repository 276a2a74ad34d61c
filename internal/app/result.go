package app

import (
	"encoding/json"

	"github.com/hashicorp/hcl/v2"
)

// Result statuses used by the CLI and the HTTP endpoints.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Finding is one error in the wire envelope, positioned by its start.
type Finding struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Result is the envelope returned by the conversion endpoints. JSON and
// Source are only set by the endpoint that produces them, and only on
// success.
type Result struct {
	Result string          `json:"result"`
	Errors []Finding       `json:"errors,omitempty"`
	JSON   json.RawMessage `json:"json,omitempty"`
	Source string          `json:"source,omitempty"`
}

// findings flattens diagnostics into the envelope's error list.
func findings(diags hcl.Diagnostics) []Finding {
	out := make([]Finding, 0, len(diags))
	for _, d := range diags {
		f := Finding{Message: d.Detail}
		if f.Message == "" {
			f.Message = d.Summary
		}
		if d.Subject != nil {
			f.Line = d.Subject.Start.Line
			f.Column = d.Subject.Start.Column
		}
		out = append(out, f)
	}
	return out
}

func failureResult(diags hcl.Diagnostics) Result {
	return Result{Result: ResultFailure, Errors: findings(diags)}
}

func failureMessage(msg string) Result {
	return Result{Result: ResultFailure, Errors: []Finding{{Message: msg}}}
}
