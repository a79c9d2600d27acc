package vm

import (
	"github.com/swordsmanluke/weave/lang/arena"
	"github.com/swordsmanluke/weave/lang/chunk"
	"github.com/swordsmanluke/weave/lang/value"
)

// Closure is a Function template bound to the upvalues it captured at
// CLOSURE-instruction time (spec.md §4.7 "CLOSURE execution"). Closures
// live in vm.closures and are referenced by value.Value via
// value.PtrClosureHandle + arena.Handle, never by raw Go pointer, so a
// Value never hides a reference the garbage collector can't see.
type Closure struct {
	Fn       *chunk.Function
	Upvalues []arena.Handle
}

// Upvalue is the shared mutable cell spec.md §9 describes: "shared mutable
// cell, single writer, multiple readers within a single-threaded VM". While
// Open, it aliases a live stack slot by index (not by Go pointer: the VM's
// stack slice can grow and reallocate, which would leave a *value.Value
// dangling). Once closeUpvalues converts it, StackIdx is meaningless and Closed
// holds the value directly.
type Upvalue struct {
	Open     bool
	StackIdx int
	Closed   value.Value
}

// captureUpvalue returns the Handle of the Open upvalue already registered
// for stackIdx, or creates and registers a new one. Reusing an existing
// Open upvalue for the same slot is what makes two closures that capture
// the same local observe each other's writes (spec.md §4.7, §4.8).
func (m *VM) captureUpvalue(stackIdx int) arena.Handle {
	for _, h := range m.openUpvalues {
		if uv, ok := m.upvalues.Get(h); ok && uv.Open && uv.StackIdx == stackIdx {
			return h
		}
	}
	h := m.upvalues.Insert(Upvalue{Open: true, StackIdx: stackIdx})
	m.openUpvalues = append(m.openUpvalues, h)
	return h
}

// closeUpvalues closes every still-Open upvalue at or above fromSlot,
// copying its current stack value into Closed, and drops it from the
// registry. Called on RETURN before the stack is truncated back to the
// frame's return slot (spec.md §4.7's invariant: "by the time the stack is
// truncated on RETURN, every upvalue that could reference a disappearing
// slot has been closed").
func (m *VM) closeUpvalues(fromSlot int) {
	kept := m.openUpvalues[:0]
	for _, h := range m.openUpvalues {
		uv, ok := m.upvalues.Get(h)
		if !ok || !uv.Open {
			continue
		}
		if uv.StackIdx >= fromSlot {
			uv.Open = false
			uv.Closed = m.stack[uv.StackIdx]
			m.upvalues.Set(h, uv)
			continue
		}
		kept = append(kept, h)
	}
	m.openUpvalues = kept
}

// readUpvalue returns the current value held by the upvalue h references.
func (m *VM) readUpvalue(h arena.Handle) value.Value {
	uv, ok := m.upvalues.Get(h)
	if !ok {
		return value.Null()
	}
	if uv.Open {
		return m.stack[uv.StackIdx]
	}
	return uv.Closed
}

// writeUpvalue stores v into the upvalue h references, whether it is still
// aliasing a live stack slot or has already been closed.
func (m *VM) writeUpvalue(h arena.Handle, v value.Value) {
	uv, ok := m.upvalues.Get(h)
	if !ok {
		return
	}
	if uv.Open {
		m.stack[uv.StackIdx] = v
		return
	}
	uv.Closed = v
	m.upvalues.Set(h, uv)
}
