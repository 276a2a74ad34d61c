package app

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/declpipe/internal/diag"
	"github.com/vk/declpipe/internal/model"
	"github.com/vk/declpipe/internal/parser"
	"github.com/vk/declpipe/internal/syntax"
	"github.com/vk/declpipe/internal/validator"
)

// Outcome is the result of analyzing one pipeline source: the model (when
// one could be built), every finding from both phases, and the aggregate
// verdict.
type Outcome struct {
	Pipeline *model.Pipeline
	Diags    hcl.Diagnostics
	Valid    bool
	// NoPipeline marks sources that contain no pipeline block at all.
	// Such sources are not pipelines and carry no verdict either way.
	NoPipeline bool
}

// Analyze runs the full front half over one source: syntax parse, model
// parse, then validation. It never returns an error; everything the
// phases found is in the Outcome.
func (a *App) Analyze(filename string, src []byte) *Outcome {
	rep := diag.NewReporter()
	out := &Outcome{}

	mod, file, parseDiags := syntax.Parse(filename, src)
	rep.Extend(parseDiags)

	if mod != nil && !rep.HasErrors() {
		p := parser.New(file, a.lookup, rep)
		pipe, err := p.Parse(mod)
		switch {
		case err != nil:
			// Structural failure, already reported through rep.
		case pipe == nil:
			out.NoPipeline = true
		default:
			out.Pipeline = pipe
			validator.New(a.lookup, rep).Validate(pipe)
		}
	}

	out.Diags = rep.Diags()
	out.Valid = out.Pipeline != nil && !rep.HasErrors()
	return out
}
