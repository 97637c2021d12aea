// Package pkg holds the identity of the plc module and the locations of its
// per-user files.
//
//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of plc, embedded from the VERSION file.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It also names the per-user configuration
	// and cache directories and prefixes environment variables.
	Name = "plc"
	// Description summarizes the command in help output.
	Description = "Interpreter and Java code generator for a small imperative language"
)

// AuthorInfo is a project author.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary authors.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
