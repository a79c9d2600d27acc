// Package chunk implements the compiled-code container spec.md §3/§4.4
// describes: a flat byte buffer of opcodes and operands, a deduplicated
// constant pool, and a sparse line-transition map for error reporting.
// Grounded on nenuphar's lang/compiler (opcode mnemonic table and
// stack-effect comment idiom) and lang/parser's growable-buffer-with-helpers
// shape, adapted from varint-encoded CFG-linearized opcodes to spec.md's
// fixed-width u8/u16 operand encoding.
package chunk

import (
	"encoding/binary"

	"github.com/swordsmanluke/weave/lang/value"
)

// lineEntry is one entry in Chunk's sparse line map: the code offset at
// which a new source line begins.
type lineEntry struct {
	offset int
	line   int
}

// Chunk holds one Function's compiled bytecode.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Functions []*Function

	// StringLiterals holds the raw text of every string constant the
	// compiler emitted into this chunk. A string-tagged entry in
	// Constants initially carries an index into StringLiterals rather
	// than a real arena handle (see ResolveStrings) — the compiler runs
	// with no VM/arena to intern into yet.
	StringLiterals []string
	resolved       bool

	lines []lineEntry
}

// Function is the compile-time-immutable template a CLOSURE instruction
// instantiates at runtime: name, arity, captured-upvalue count, and its own
// Chunk. spec.md §3 calls for Functions to live in "the constant pool" as a
// Value tagged "Closure (legacy raw)"; we instead give Chunk a dedicated,
// ordinary Go slice of *Function (see DESIGN.md) so the Go garbage
// collector can trace the reference directly, rather than hiding a raw
// pointer inside a NaN-boxed bit pattern with nothing else keeping it
// alive. CLOSURE's cidx operand indexes this table, not Constants.
type Function struct {
	Name         string
	Arity        int
	UpvalueCount int

	// LocalCount is the total number of local slots the function's frame
	// needs: slot 0 (the closure itself), the parameters, and every local
	// the body declares. The VM reserves these slots up front on CALL so
	// that a declaration is an ordinary SET_LOCAL write into live stack,
	// regardless of how much expression scratch sits above the locals.
	LocalCount int

	Chunk *Chunk
}

// New returns an empty Chunk.
func New() *Chunk {
	return &Chunk{}
}

// AddFunction appends fn and returns its index for use as a CLOSURE cidx
// operand. Functions are not deduplicated (each compiled fn literal is
// distinct even if structurally identical to another).
func (c *Chunk) AddFunction(fn *Function) uint16 {
	c.Functions = append(c.Functions, fn)
	return uint16(len(c.Functions) - 1)
}

// WriteByte appends b to the code stream, recording a line-map transition
// only when line differs from the last entry (spec.md §4.4).
func (c *Chunk) WriteByte(b byte, line int) int {
	off := len(c.Code)
	c.Code = append(c.Code, b)
	if n := len(c.lines); n == 0 || c.lines[n-1].line != line {
		c.lines = append(c.lines, lineEntry{offset: off, line: line})
	}
	return off
}

// WriteOp appends op as a single byte.
func (c *Chunk) WriteOp(op Op, line int) int {
	return c.WriteByte(byte(op), line)
}

// WriteU16 appends n as two big-endian bytes.
func (c *Chunk) WriteU16(n uint16, line int) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], n)
	c.WriteByte(buf[0], line)
	c.WriteByte(buf[1], line)
}

// PatchU16 overwrites the two-byte operand starting at off in place, used
// to back-patch forward jump targets once their destination is known.
func (c *Chunk) PatchU16(off int, n uint16) {
	binary.BigEndian.PutUint16(c.Code[off:off+2], n)
}

// ReadU16 decodes the two big-endian bytes starting at off.
func (c *Chunk) ReadU16(off int) uint16 {
	return binary.BigEndian.Uint16(c.Code[off : off+2])
}

// AddConstant returns the index of an existing constant equal to v, or
// appends v and returns its new index. Linear-scan dedup is acceptable
// because constant tables are small (spec.md §4.4).
func (c *Chunk) AddConstant(v value.Value) uint16 {
	for i, existing := range c.Constants {
		if value.Equal(existing, v) {
			return uint16(i)
		}
	}
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

// EmitConstant appends CONSTANT <idx:u16> for v.
func (c *Chunk) EmitConstant(v value.Value, line int) {
	idx := c.AddConstant(v)
	c.WriteOp(CONSTANT, line)
	c.WriteU16(idx, line)
}

// AddStringConstant interns s into StringLiterals (deduplicated by text)
// and returns a not-yet-arena-backed PtrString Value wrapping its index,
// suitable for AddConstant/EmitConstant. See ResolveStrings.
func (c *Chunk) AddStringConstant(s string) value.Value {
	for i, lit := range c.StringLiterals {
		if lit == s {
			return value.Ptr(value.PtrString, uint64(i))
		}
	}
	c.StringLiterals = append(c.StringLiterals, s)
	return value.Ptr(value.PtrString, uint64(len(c.StringLiterals)-1))
}

// ResolveStrings rewrites every string-tagged constant in place from a
// StringLiterals index to the real arena handle bits intern returns,
// interning each literal's text exactly once, then recurses into every
// nested Function's chunk so that code reachable only through CLOSURE
// (where GET_GLOBAL/SET_GLOBAL name constants also live) is resolved
// before it can execute. The VM calls this once per top-level Run (see
// lang/vm); it is idempotent, which also binds the chunk to the first
// VM's string arena — a compiled Function is not shareable across VMs.
func (c *Chunk) ResolveStrings(intern func(string) uint64) {
	if c.resolved {
		return
	}
	for i, v := range c.Constants {
		if v.IsPtr() && v.PtrTag() == value.PtrString {
			lit := c.StringLiterals[v.HandleBits()]
			c.Constants[i] = value.Ptr(value.PtrString, intern(lit))
		}
	}
	for _, fn := range c.Functions {
		fn.Chunk.ResolveStrings(intern)
	}
	c.resolved = true
}

// LineOf returns the source line of the instruction at offset: the line of
// the last line-map entry whose offset is <= offset, or 0 if there is none
// (see SPEC_FULL.md §13 item 5). Entries are scanned in order and the scan
// stops at the first entry past offset.
func (c *Chunk) LineOf(offset int) int {
	line := 0
	for _, e := range c.lines {
		if e.offset > offset {
			break
		}
		line = e.line
	}
	return line
}
