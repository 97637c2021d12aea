package profile

// Profiler selects a profile mode and the directory its output is written
// to. The zero Profiler records nothing.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. It returns a no-op Stopper if Mode is empty or
// unknown, or if profiling was not compiled in.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
