package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolve(t *testing.T) {
	const doc = `
log:
  level: debug
  pretty: false
log_caller: true
path:
  - /usr/share/plc
  - lib
pprof-dir: /tmp/pprof
retries: 3
`

	r, err := resolve(t.Context(), baseConfig)(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-pretty", false},
		{"log-caller", true},
		{"pprof-dir", "/tmp/pprof"},
		{"retries", "3"},
		{"missing", nil},
	}

	for _, tt := range tests {
		got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
		if err != nil || got != tt.want {
			t.Errorf("Resolve(%s) = %v (%T), %v; want %v", tt.flag, got, got, err, tt.want)
		}
	}

	path, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "path"}})
	if items, ok := path.([]any); !ok || len(items) != 2 || items[1] != "lib" {
		t.Errorf("Resolve(path) = %v", path)
	}
}

func TestResolve_Invalid(t *testing.T) {
	for _, doc := range []string{"", "log: [unterminated", "- a\n- b\n"} {
		r, err := resolve(t.Context(), baseConfig)(strings.NewReader(doc))
		if err != nil {
			t.Errorf("resolve(%q) error: %v", doc, err)

			continue
		}

		if got, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}}); got != nil {
			t.Errorf("resolve(%q) produced %v", doc, got)
		}
	}
}
