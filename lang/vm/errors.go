package vm

import (
	"fmt"
	"strings"
)

// FrameTrace describes one call-frame's position at the moment a
// RuntimeError was raised, per spec.md §7: "the VM walks the call-frame
// stack and reports each frame's line + function name".
type FrameTrace struct {
	Function string
	Line     int
}

// RuntimeError is spec.md §7's "Runtime error" category (exit code 80 via
// lang/weaver's ExitCode): a unary/binary type mismatch, undefined global,
// wrong argument count, non-callable value, or stack overflow. It carries
// the full call-frame trace captured at the point of failure.
type RuntimeError struct {
	Message string
	Frames  []FrameTrace
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Frames {
		fmt.Fprintf(&b, "\n\tat %s (line %d)", frameLabel(f.Function), f.Line)
	}
	return b.String()
}

func frameLabel(name string) string {
	if name == "" {
		return "<script>"
	}
	return name
}

// InvalidChunkError is spec.md §7's "Invalid chunk" category (exit code 60):
// the dispatcher was invoked with no frames, or encountered an opcode byte
// outside the known set. It indicates an interpreter bug or corrupted
// bytecode, never a user program mistake.
type InvalidChunkError struct {
	Message string
}

func (e *InvalidChunkError) Error() string { return "invalid chunk: " + e.Message }
