package chunk

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of c to w, labeled name. This
// is debug/tooling support only (spec.md §2 "Disassembler ... debug only"),
// exercised by the `weaver disasm` CLI subcommand (SPEC_FULL.md §12).
func (c *Chunk) Disassemble(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	lastLine := -1
	for off := 0; off < len(c.Code); {
		off, lastLine = c.disassembleInstruction(w, off, lastLine)
	}
}

func (c *Chunk) disassembleInstruction(w io.Writer, off, lastLine int) (next, line int) {
	line = c.LineOf(off)
	fmt.Fprintf(w, "%04d ", off)
	if line == lastLine {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	op := Op(c.Code[off])
	switch op {
	case CONSTANT:
		idx := c.ReadU16(off + 1)
		fmt.Fprintf(w, "%-16s %4d\n", op, idx)
		return off + 3, line

	case GET_LOCAL, SET_LOCAL, GET_UPVALUE, SET_UPVALUE, CALL:
		slot := c.Code[off+1]
		fmt.Fprintf(w, "%-16s %4d\n", op, slot)
		return off + 2, line

	case JUMP, JUMP_IF_FALSE:
		delta := c.ReadU16(off + 1)
		fmt.Fprintf(w, "%-16s %4d -> %d\n", op, delta, off+3+int(delta))
		return off + 3, line

	case LOOP:
		delta := c.ReadU16(off + 1)
		fmt.Fprintf(w, "%-16s %4d -> %d\n", op, delta, off+3-int(delta))
		return off + 3, line

	case CLOSURE:
		idx := c.ReadU16(off + 1)
		next = off + 3
		var fn *Function
		if int(idx) < len(c.Functions) {
			fn = c.Functions[idx]
		}
		if fn != nil {
			fmt.Fprintf(w, "%-16s %4d %s\n", op, idx, fn.Name)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal, slot := c.Code[next], c.Code[next+1]
				kind := "upvalue"
				if isLocal != 0 {
					kind = "local"
				}
				fmt.Fprintf(w, "%04d      |                     %s %d\n", next, kind, slot)
				next += 2
			}
		} else {
			fmt.Fprintf(w, "%-16s %4d\n", op, idx)
		}
		return next, line

	case TRUE, FALSE, NULL, POP, NEGATE, NOT, ADD, SUB, MUL, DIV,
		GREATER, LESS, EQUAL, PRINT, GET_GLOBAL, SET_GLOBAL, RETURN:
		fmt.Fprintf(w, "%s\n", op)
		return off + 1, line

	default:
		fmt.Fprintf(w, "unknown opcode %d\n", op)
		return off + 1, line
	}
}
