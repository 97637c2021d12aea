// Package cmd implements the plc subcommands. Each command loads one
// program, reports lexical and syntax errors with a caret under the
// offending source position, and runs part of the pipeline over it.
package cmd

var (
	// CacheIdentifier is the kong variable holding the per-user cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the path of the
	// configuration file.
	ConfigIdentifier = "config"
)
