// Package cli contains the command line interface for enaml.
//
// # Usage
//
// The CLI parses enaml source files and prints their syntax trees:
//
//	enaml parse view.enaml
//	enaml check --quiet src/*.enaml
//	enaml lex view.enaml
//
// With no subcommand, parse is assumed. A single "-" reads from stdin.
//
// # Configuration
//
// Flag defaults may be stored in a config file under the user config
// directory (e.g., ~/.config/enaml/config.yaml) in JSON or YAML form.
// Command-line flags override config file values.
//
// Compiled parse tables are cached under the user cache directory
// (e.g., ~/.cache/enaml/tables) so repeated invocations skip table
// construction.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Enable colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/enaml/pprof)
//
// # Examples
//
//	# Debug logging while parsing to JSON
//	enaml --log-level=debug parse -F json view.enaml
//
//	# Check a tree of sources, reporting only failures
//	enaml check -q $(find src -name '*.enaml')
//
//	# CPU profile of a large parse
//	enaml --pprof-mode=cpu parse big.enaml
package cli
