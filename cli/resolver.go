package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/plc/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration
// files. Nested mappings are flattened by joining keys with hyphens, so
// both of these set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Keys may use underscores in place of hyphens. Numbers are passed to kong
// as strings. Command-line flags override configuration values.
//
// A file that cannot be decoded is logged and ignored.
func resolve(ctx context.Context, name string) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		dec := yaml.NewDecoder(r)
		if err := dec.DecodeContext(ctx, &doc); err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring configuration",
				slog.String("config", name),
				slog.Any("error", err),
			)

			return config{}, nil
		}

		c := config{}
		c.flatten("", doc)

		return c, nil
	}
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ReplaceAll(k, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch v := v.(type) {
		case map[string]any:
			c.flatten(key, v)
		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				items[i] = scalar(item)
			}

			c[key] = items
		default:
			c[key] = scalar(v)
		}
	}
}

// scalar converts numbers to the strings kong parses flags from.
func scalar(v any) any {
	switch v := v.(type) {
	case uint64, int64, int, float64:
		return fmt.Sprint(v)
	default:
		return v
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil //nolint:nilnil
}
