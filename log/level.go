package log

//go:generate go tool stringer --linecomment --type Level,Format --output level_string.go

import (
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is the level used when none is configured or a level string
// cannot be parsed.
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels iterates over the names of every defined level, lowest first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range levels {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// ParseLevel parses a level name, case-insensitively, optionally followed by
// a signed offset such as "debug+2". Anything else yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	// slog does not know about trace.
	if base, ok := strings.CutPrefix(strings.ToLower(s), "trace"); ok {
		s = "debug" + base

		var l slog.Level
		if l.UnmarshalText([]byte(s)) != nil {
			return DefaultLevel
		}

		return Level(l) + (LevelTrace - LevelDebug)
	}

	var l slog.Level
	if l.UnmarshalText([]byte(s)) != nil {
		return DefaultLevel
	}

	return Level(l)
}

// label returns the upper-case name used in log output.
func (l Level) label() string {
	if slices.Contains(levels, l) {
		return strings.ToUpper(l.String())
	}

	return slog.Level(l).String()
}

// Format selects the encoding of log records.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the format used when none is configured or a format
// string cannot be parsed.
const DefaultFormat = FormatText

// Formats iterates over the names of every defined format.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatText, FormatJSON} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat parses "text" or "json", case-insensitively. Anything else
// yields [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatJSON.String():
		return FormatJSON
	case FormatText.String():
		return FormatText
	default:
		return DefaultFormat
	}
}
