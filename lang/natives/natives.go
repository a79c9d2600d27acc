// Package natives implements the concrete host bodies for the closed set of
// native functions spec.md §6/§9 names: clock, input, print, read, write.
// These are explicitly out of the interpreter core's scope ("native-function
// bodies" are listed among spec.md §1's external collaborators) but a
// runnable binary needs them, so Weaver ships them here rather than in
// lang/vm; lang/weaver.NewVM wires them in right after vm.New(), the way nenuphar's
// machine.Thread.Predeclared map is populated by its embedder (cmd/nenuphar)
// rather than by the machine package itself.
package natives

import (
	"bufio"
	"os"
	"time"

	"github.com/swordsmanluke/weave/lang/value"
	"github.com/swordsmanluke/weave/lang/vm"
)

// Register installs clock, input, print, read and write as globals on m.
// Call it once, immediately after vm.New(), before running any program.
func Register(m *vm.VM) {
	m.RegisterNative(vm.NativeFunc{Name: "clock", Arity: 0, Fn: clock})
	m.RegisterNative(vm.NativeFunc{Name: "input", Arity: 0, Fn: input(m)})
	m.RegisterNative(vm.NativeFunc{Name: "print", Arity: 1, Fn: print_})
	m.RegisterNative(vm.NativeFunc{Name: "read", Arity: 1, Fn: read})
	m.RegisterNative(vm.NativeFunc{Name: "write", Arity: 2, Fn: write})
}

// clock returns milliseconds since the Unix epoch, per spec.md §6.
func clock(m *vm.VM, args []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixMilli())), nil
}

// input reads one line from m.Stdin, trimming the trailing newline. The
// reader is built lazily from whatever m.Stdin is at call time (rather than
// captured once at Register time) so an embedder that swaps m.Stdin after
// construction — the REPL does not, but a test harness may — is honored.
func input(m *vm.VM) func(*vm.VM, []value.Value) (value.Value, error) {
	var r *bufio.Reader
	return func(m *vm.VM, args []value.Value) (value.Value, error) {
		if r == nil {
			in := m.Stdin
			if in == nil {
				in = os.Stdin
			}
			r = bufio.NewReader(in)
		}
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return m.InternString(""), nil
		}
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		return m.InternString(line), nil
	}
}

// print_ writes v's display representation to stdout and returns null. It
// is distinct from the PRINT opcode ("puts"): this is the callable global
// function named print, spec.md §6's "print(v) -> null (prints v)".
func print_(m *vm.VM, args []value.Value) (value.Value, error) {
	m.Stdout.Write([]byte(m.Display(args[0]) + "\n"))
	return value.Null(), nil
}

// read returns the contents of the file at args[0] (a string) as a string.
func read(m *vm.VM, args []value.Value) (value.Value, error) {
	path := m.Display(args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Null(), err
	}
	return m.InternString(string(data)), nil
}

// write overwrites the file at args[0] with args[1]'s display
// representation and returns null.
func write(m *vm.VM, args []value.Value) (value.Value, error) {
	path := m.Display(args[0])
	content := m.Display(args[1])
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return value.Null(), err
	}
	return value.Null(), nil
}
