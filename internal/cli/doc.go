// Package cli parses command-line arguments, merges them with the optional
// YAML config file, and handles process-level concerns like exit codes. It
// translates user input into the application's internal configuration.
package cli
