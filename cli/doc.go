// Package cli contains the command line interface for plc.
//
// # Usage
//
//	plc [flags] <command> [args]
//
// The run command is the default, so these are equivalent:
//
//	plc hello.plc
//	plc run hello.plc
//
// # Commands
//
//   - run: analyze and interpret a program; exit with the value of main
//   - gen: translate a program to Java
//   - check: analyze a program and list its declarations
//   - tokens: list the tokens of a program
//   - ast: print the syntax tree as an outline, JSON or YAML
//   - repl: evaluate statements and expressions interactively
//
// Each command reads standard input when its source is "-".
//
// # Search path
//
// Relative source names not found in the working directory are looked up
// in each --path directory and then in the directories listed in PLC_PATH.
//
// # Configuration
//
// Flags may also be set in config.json or config.yaml in the user
// configuration directory. Command-line flags take precedence.
//
//	log:
//	  level: debug
//	  pretty: false
//	path: [/usr/local/share/plc]
//
// # Profiling
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o plc .
//	plc --pprof-mode=cpu run hello.plc
package cli
