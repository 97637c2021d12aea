// Package profile wraps [github.com/pkg/profile] so the plc command can
// record runtime profiles of the interpreter and code generator.
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	plc --pprof-mode cpu run examples/fib.plc
//	go tool pprof -http=: ~/.cache/plc/pprof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op.
package profile

// Tag is the build tag that enables profiling.
const Tag = `pprof`
