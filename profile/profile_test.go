package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Start(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{"zero", Profiler{}},
		{"unknown mode", Profiler{Mode: "bogus", Path: t.TempDir(), Quiet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.p.Start()
			if _, ok := s.(ignore); !ok {
				t.Errorf("Start() = %T, want a no-op", s)
			}

			s.Stop()
		})
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !slices.IsSorted(modes) {
		t.Errorf("Modes() = %v, not sorted", modes)
	}

	if len(modes) > 0 && !slices.Contains(modes, "cpu") {
		t.Errorf("Modes() = %v, missing cpu", modes)
	}
}
