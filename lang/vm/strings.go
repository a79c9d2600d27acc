package vm

import (
	"github.com/swordsmanluke/weave/lang/arena"
	"github.com/swordsmanluke/weave/lang/value"
)

// InternString interns s and returns a PtrString Value referencing it, for
// external collaborators (lang/natives) that need to hand a Go string back
// into the VM as a first-class Weave value.
func (m *VM) InternString(s string) value.Value {
	return value.Ptr(value.PtrString, m.intern(s))
}

// intern returns the arena handle bits for s, reusing an existing entry for
// identical text. Deduplication here is load-bearing, not just an
// optimisation: spec.md §3 defines Value equality as bitwise except for
// numbers, so two strings with equal content must resolve to the same
// arena.Handle or EQUAL would wrongly report them as different values.
func (m *VM) intern(s string) uint64 {
	if bits, ok := m.internIndex.Get(s); ok {
		return bits
	}
	h := m.strings.Insert(value.NewStr(s))
	bits := h.Bits48()
	m.internIndex.Put(s, bits)
	return bits
}

// stringAt dereferences a PtrString Value's handle bits back to its text.
func (m *VM) stringAt(bits uint64) (string, bool) {
	str, ok := m.strings.Get(arena.HandleFromBits48(bits))
	return str.Data, ok
}
