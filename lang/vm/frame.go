package vm

import "github.com/swordsmanluke/weave/lang/arena"

// maxFrames bounds the call stack at spec.md §4.6's "maximum depth 100";
// exceeding it raises the runtime error "Stack overflow".
const maxFrames = 100

// callFrame is one activation of a Closure. returnSlot is the stack index
// of the closure itself (spec.md's fn_slot): on RETURN the stack is
// truncated back to this index, and local slot 0 of the callee (the
// closure's own reserved slot) lives here.
type callFrame struct {
	closure    arena.Handle
	fn         *Closure
	ip         int
	returnSlot int
}
