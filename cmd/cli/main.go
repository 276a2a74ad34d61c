package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/declpipe/internal/app"
	"github.com/vk/declpipe/internal/cli"
)

// main is the entrypoint for the declpipe application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Program output is written to out; logs and diagnostics go to
// stderr.
func run(out io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, out)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Startup wiring panics on programmer errors; recover here so the
	// caller sees a regular error instead of a crash.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	declpipeApp := app.NewApp(out, os.Stderr, appConfig, nil)
	return declpipeApp.Run(context.Background(), appConfig)
}
