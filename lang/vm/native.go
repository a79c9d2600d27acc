package vm

import "github.com/swordsmanluke/weave/lang/value"

// NativeFunc is a host-implemented callable exposed as a global Value, per
// spec.md §9's "Native{arity, name, invoke(args) -> Value or RuntimeError}"
// design note. The set is closed at VM construction (lang/natives registers
// the concrete clock/input/print/read/write bodies); nothing at runtime
// can add to it.
type NativeFunc struct {
	Name  string
	Arity int
	Fn    func(m *VM, args []value.Value) (value.Value, error)
}

// RegisterNative installs fn as both a global binding and, implicitly, the
// callee a NativeFn-tagged Value resolves to. It is meant to be called only
// during VM setup (lang/natives), never mid-program.
func (m *VM) RegisterNative(fn NativeFunc) {
	idx := uint64(len(m.natives))
	m.natives = append(m.natives, fn)
	m.globals.Put(fn.Name, value.Ptr(value.PtrNativeFn, idx))
}

func (m *VM) nativeAt(idx uint64) (NativeFunc, bool) {
	if idx >= uint64(len(m.natives)) {
		return NativeFunc{}, false
	}
	return m.natives[idx], true
}
