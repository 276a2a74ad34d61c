package app

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/declpipe/internal/ctxlog"
	"github.com/vk/declpipe/internal/fsutil"
)

// Run executes the main application logic based on the provided
// configuration: server mode when a port is configured, otherwise one
// analyze/convert pass over every pipeline file under the input path.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if cfg.ServerPort > 0 {
		return a.serve(ctx, cfg.ServerPort)
	}

	files, err := fsutil.FindPipelineFiles(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("failed to locate pipeline files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no pipeline files found under %s", cfg.InputPath)
	}
	a.logger.Debug("Pipeline files located.", "count", len(files))

	failed := 0
	for _, path := range files {
		ok, err := a.runFile(path, cfg.Output)
		if err != nil {
			return err
		}
		if !ok {
			failed++
		}
	}

	a.logger.Debug("App.Run method finished.")
	if failed > 0 {
		return fmt.Errorf("%d of %d pipeline definitions failed validation", failed, len(files))
	}
	return nil
}

// runFile analyzes one file and emits the configured output. The bool is
// the file's verdict; the error is reserved for I/O failures.
func (a *App) runFile(path, output string) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out := a.Analyze(path, src)
	if out.NoPipeline {
		a.logger.Warn("No pipeline block found, skipping.", "file", path)
		return true, nil
	}
	if len(out.Diags) > 0 {
		a.writeDiags(path, src, out.Diags)
	}
	if !out.Valid {
		a.logger.Error("Pipeline definition is invalid.", "file", path, "errors", len(out.Diags))
		return false, nil
	}

	switch output {
	case OutputJSON:
		b, err := out.Pipeline.ToJSON()
		if err != nil {
			return false, fmt.Errorf("failed to serialize %s: %w", path, err)
		}
		fmt.Fprintln(a.outW, string(b))
	case OutputSource:
		fmt.Fprint(a.outW, out.Pipeline.SourceText())
	}
	a.logger.Info("Pipeline definition is valid.", "file", path)
	return true, nil
}

// writeDiags renders diagnostics with source context to the error writer.
func (a *App) writeDiags(path string, src []byte, diags hcl.Diagnostics) {
	files := map[string]*hcl.File{path: {Bytes: src}}
	wr := hcl.NewDiagnosticTextWriter(a.errW, files, 100, false)
	if err := wr.WriteDiagnostics(diags); err != nil {
		a.logger.Error("Failed to render diagnostics.", "error", err)
	}
}
