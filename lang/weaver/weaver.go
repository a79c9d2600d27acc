// Package weaver is Weave's top-level compile-and-run facade, the
// equivalent of nenuphar's internal/maincmd command functions that glue
// scanner/compiler/machine together behind a single entry point for both
// the CLI and the REPL.
package weaver

import (
	"github.com/swordsmanluke/weave/lang/compiler"
	"github.com/swordsmanluke/weave/lang/natives"
	"github.com/swordsmanluke/weave/lang/value"
	"github.com/swordsmanluke/weave/lang/vm"
)

// CompilationError wraps the diagnostics compiler.Compile produced, per
// spec.md §7's "Compile error" category (exit code 70).
type CompilationError struct {
	Errors []error
}

func (e *CompilationError) Error() string {
	msg := "compilation failed"
	if len(e.Errors) > 0 {
		msg += ": " + e.Errors[0].Error()
	}
	if len(e.Errors) > 1 {
		msg += " (+ more)"
	}
	return msg
}

func (e *CompilationError) Unwrap() []error { return e.Errors }

// NewVM returns a VM with the closed native-function set (spec.md §6)
// already installed, ready to Run a compiled program.
func NewVM() *vm.VM {
	m := vm.New()
	natives.Register(m)
	return m
}

// Run compiles src (named filename for diagnostics) and executes it on m,
// returning the value of its final RETURN. A compile failure is reported
// as *CompilationError without ever reaching m; a failure during execution
// surfaces as whatever lang/vm returned (*vm.RuntimeError or
// *vm.InvalidChunkError).
func Run(m *vm.VM, filename, src string) (value.Value, error) {
	fn, errs := compiler.Compile(filename, src)
	if len(errs) > 0 {
		return value.Null(), &CompilationError{Errors: errs}
	}
	return m.Run(fn)
}

// Exit codes, per spec.md §6: "0 success, 60 invalid chunk, 70 compilation
// error, 80 runtime error".
const (
	ExitSuccess          = 0
	ExitInvalidChunk     = 60
	ExitCompilationError = 70
	ExitRuntimeError     = 80
)

// ExitCode maps err (as returned by Run) to the process exit code spec.md
// §6 defines, the idiomatic-Go analogue of nenuphar's mainer.ExitCode
// constants (mainer.Success, mainer.Failure, mainer.InvalidArgs).
func ExitCode(err error) int {
	switch err.(type) {
	case nil:
		return ExitSuccess
	case *CompilationError:
		return ExitCompilationError
	case *vm.InvalidChunkError:
		return ExitInvalidChunk
	default:
		return ExitRuntimeError
	}
}
