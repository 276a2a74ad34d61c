package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/declpipe/internal/app"
)

// defaultConfigFile is picked up automatically when present.
const defaultConfigFile = "declpipe.yaml"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("declpipe", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
declpipe - Parser, validator and converter for declarative pipeline definitions.

Usage:
  declpipe [options] [PATH]

Arguments:
  PATH
    Path to a pipeline file, or a directory to scan for Jenkinsfile and
    *.jenkinsfile definitions.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("input", "", "Path to the pipeline file or directory.")
	iFlag := flagSet.String("i", "", "Path to the pipeline file or directory (shorthand).")
	outputFlag := flagSet.String("output", "", "Output for valid pipelines. Options: 'none', 'json' or 'source'.")
	serverPortFlag := flagSet.Int("server-port", 0, "Port for the validation HTTP API. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	configFlag := flagSet.String("config", "", "Path to a YAML config file.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *inputFlag != "" {
		path = *inputFlag
	} else if *iFlag != "" {
		path = *iFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Input path determined.", "path", path)

	cfg := app.Config{
		InputPath:  path,
		Output:     strings.ToLower(*outputFlag),
		ServerPort: *serverPortFlag,
		LogFormat:  strings.ToLower(*logFormatFlag),
		LogLevel:   strings.ToLower(*logLevelFlag),
	}

	// Flags win over the config file; the file fills whatever is unset.
	configFile := *configFlag
	if configFile == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			configFile = defaultConfigFile
		}
	}
	if configFile != "" {
		if err := app.ApplyConfigFile(&cfg, configFile); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		slog.Debug("Config file applied.", "path", configFile)
	}

	if cfg.InputPath == "" && cfg.ServerPort == 0 {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if cfg.LogFormat != "" && cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
