// Package vm implements the stack-based bytecode interpreter spec.md §4.6
// describes: a dispatch loop over a Chunk's bytes, a Value stack shared
// across call frames, a swiss-table-backed global environment, and the
// generational arenas (lang/arena) holding strings, closures and upvalues
// that a NaN-boxed Value can reference without exposing a raw Go pointer to
// it. Grounded on nenuphar's lang/machine package for the dispatch-loop
// shape (a labeled loop, a stack slice mutated in place, a Frame per
// activation) and its machine.Map for swiss-table-backed globals; the
// calling convention, upvalue lifecycle and instruction semantics follow
// spec.md §4.6–§4.8 rather than nenuphar's own (interface-Value, CFG-based)
// machine, which has no register-free stack or NaN-boxing at all.
package vm

import (
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/swordsmanluke/weave/lang/arena"
	"github.com/swordsmanluke/weave/lang/chunk"
	"github.com/swordsmanluke/weave/lang/value"
)

// VM is one interpreter instance. It is not safe for concurrent use from
// multiple goroutines (spec.md §5: "single-threaded, cooperative within a
// single VM instance"); an embedder that wants parallel evaluation runs
// separate VMs.
type VM struct {
	stack  []value.Value
	frames []callFrame

	globals *swiss.Map[string, value.Value]

	strings     *arena.Arena[value.Str]
	internIndex *swiss.Map[string, uint64]

	closures     *arena.Arena[*Closure]
	upvalues     *arena.Arena[Upvalue]
	openUpvalues []arena.Handle

	natives []NativeFunc

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// New returns a ready-to-run VM with empty globals. Native functions are
// not installed here (see lang/natives, per spec.md §1's "native-function
// bodies" being an external collaborator); callers that want clock/input/
// print/read/write must register them with RegisterNative first.
func New() *VM {
	return &VM{
		globals:     swiss.NewMap[string, value.Value](0),
		strings:     arena.New[value.Str](),
		internIndex: swiss.NewMap[string, uint64](0),
		closures:    arena.New[*Closure](),
		upvalues:    arena.New[Upvalue](),
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Stdin:       os.Stdin,
	}
}

// Run compiles fn's strings into this VM's string arena and executes it as
// the top-level script closure (spec.md: "a top-level Closure pushed onto
// the VM stack and its frame installed"), returning the value of its final
// RETURN.
func (m *VM) Run(fn *chunk.Function) (value.Value, error) {
	fn.Chunk.ResolveStrings(m.intern)

	closure := &Closure{Fn: fn}
	h := m.closures.Insert(closure)

	m.stack = append(m.stack[:0], value.Ptr(value.PtrClosureHandle, h.Bits48()))
	m.frames = append(m.frames[:0], callFrame{closure: h, fn: closure, ip: 0, returnSlot: 0})
	m.openUpvalues = m.openUpvalues[:0]
	m.reserveLocals(0, fn.LocalCount)

	v, err := m.run()
	if err != nil {
		// spec.md §7: "Runtime errors terminate the current program
		// immediately; the VM's stacks are cleared, globals are retained."
		m.stack = m.stack[:0]
		m.frames = m.frames[:0]
		m.openUpvalues = m.openUpvalues[:0]
	}
	return v, err
}

func (m *VM) push(v value.Value) {
	m.stack = append(m.stack, v)
}

func (m *VM) pop() value.Value {
	n := len(m.stack) - 1
	v := m.stack[n]
	m.stack = m.stack[:n]
	return v
}

func (m *VM) peek(distanceFromTop int) value.Value {
	return m.stack[len(m.stack)-1-distanceFromTop]
}

// reserveLocals extends the stack with nulls so every one of the frame's
// localCount slots (closure, parameters, body-declared locals) is live from
// the frame's first instruction. Declarations then compile to plain
// SET_LOCAL writes, and GET_LOCAL/SET_LOCAL always address within bounds no
// matter how much expression scratch has been pushed or popped above the
// locals.
func (m *VM) reserveLocals(base, localCount int) {
	for len(m.stack) < base+localCount {
		m.push(value.Null())
	}
}

// runtimeErr builds a RuntimeError carrying the current call-frame trace,
// per spec.md §7.
func (m *VM) runtimeErr(msg string) *RuntimeError {
	frames := make([]FrameTrace, 0, len(m.frames))
	for i := len(m.frames) - 1; i >= 0; i-- {
		fr := m.frames[i]
		// ip has already advanced past the faulting instruction's opcode
		// byte (and, in parent frames, past the whole CALL), so back up one
		// byte to land inside the instruction the line map should attribute.
		off := fr.ip - 1
		if off < 0 {
			off = 0
		}
		frames = append(frames, FrameTrace{
			Function: fr.fn.Fn.Name,
			Line:     fr.fn.Fn.Chunk.LineOf(off),
		})
	}
	return &RuntimeError{Message: msg, Frames: frames}
}

// run is the dispatch loop: decode one opcode from the current frame's
// chunk, execute it against the shared stack, repeat. Grounded on
// nenuphar's machine.run (a labeled "loop:" for-statement over a switch on
// the opcode byte, with the stack represented as a plain slice mutated in
// place) but driven by spec.md's fixed-width instruction encoding instead
// of nenuphar's varint-operand CFG bytecode.
func (m *VM) run() (value.Value, error) {
loop:
	for {
		if len(m.frames) == 0 {
			return value.Null(), &InvalidChunkError{Message: "dispatcher invoked with no call frames"}
		}
		fr := &m.frames[len(m.frames)-1]
		code := fr.fn.Fn.Chunk.Code
		if fr.ip >= len(code) {
			return value.Null(), &InvalidChunkError{Message: "instruction pointer ran past the end of the chunk"}
		}

		op := chunk.Op(code[fr.ip])
		fr.ip++

		switch op {
		case chunk.CONSTANT:
			idx := fr.fn.Fn.Chunk.ReadU16(fr.ip)
			fr.ip += 2
			m.push(fr.fn.Fn.Chunk.Constants[idx])

		case chunk.TRUE:
			m.push(value.Bool(true))
		case chunk.FALSE:
			m.push(value.Bool(false))
		case chunk.NULL:
			m.push(value.Null())

		case chunk.POP:
			m.pop()

		case chunk.NEGATE:
			v := m.pop()
			if !v.IsNumber() {
				return value.Null(), m.runtimeErr("operand to '-' must be a number")
			}
			m.push(value.Number(-v.AsNumber()))

		case chunk.NOT:
			v := m.pop()
			m.push(value.Bool(!v.Truthy()))

		case chunk.ADD:
			b := m.pop()
			a := m.pop()
			switch {
			case a.IsNumber() && b.IsNumber():
				m.push(value.Number(a.AsNumber() + b.AsNumber()))
			case a.IsPtr() && a.PtrTag() == value.PtrString, b.IsPtr() && b.PtrTag() == value.PtrString:
				m.push(value.Ptr(value.PtrString, m.intern(m.Display(a)+m.Display(b))))
			default:
				return value.Null(), m.runtimeErr("operands to '+' must be two numbers or involve a string")
			}

		case chunk.SUB, chunk.MUL, chunk.DIV:
			b := m.pop()
			a := m.pop()
			if !a.IsNumber() || !b.IsNumber() {
				return value.Null(), m.runtimeErr("operands must be numbers")
			}
			x, y := a.AsNumber(), b.AsNumber()
			switch op {
			case chunk.SUB:
				m.push(value.Number(x - y))
			case chunk.MUL:
				m.push(value.Number(x * y))
			case chunk.DIV:
				m.push(value.Number(x / y)) // IEEE 754: never a runtime error
			}

		case chunk.GREATER, chunk.LESS:
			b := m.pop()
			a := m.pop()
			if !a.IsNumber() || !b.IsNumber() {
				m.push(value.Bool(false)) // spec.md §4.6: non-numeric comparisons push false
				continue loop
			}
			if op == chunk.GREATER {
				m.push(value.Bool(a.AsNumber() > b.AsNumber()))
			} else {
				m.push(value.Bool(a.AsNumber() < b.AsNumber()))
			}

		case chunk.EQUAL:
			b := m.pop()
			a := m.pop()
			m.push(value.Bool(value.Equal(a, b)))

		case chunk.PRINT:
			v := m.peek(0)
			io.WriteString(m.stdoutOrDefault(), m.Display(v)+"\n")

		case chunk.JUMP:
			off := fr.fn.Fn.Chunk.ReadU16(fr.ip)
			fr.ip += 2 + int(off)

		case chunk.JUMP_IF_FALSE:
			off := fr.fn.Fn.Chunk.ReadU16(fr.ip)
			fr.ip += 2
			if !m.pop().Truthy() {
				fr.ip += int(off)
			}

		case chunk.LOOP:
			off := fr.fn.Fn.Chunk.ReadU16(fr.ip)
			fr.ip += 2
			fr.ip -= int(off)

		case chunk.GET_LOCAL:
			slot := int(code[fr.ip])
			fr.ip++
			m.push(m.stack[fr.returnSlot+slot])

		case chunk.SET_LOCAL:
			slot := int(code[fr.ip])
			fr.ip++
			m.stack[fr.returnSlot+slot] = m.peek(0)

		case chunk.GET_GLOBAL:
			name, err := m.popGlobalName()
			if err != nil {
				return value.Null(), err
			}
			v, ok := m.globals.Get(name)
			if !ok {
				return value.Null(), m.runtimeErr("undefined global '" + name + "'")
			}
			m.push(v)

		case chunk.SET_GLOBAL:
			name, err := m.popGlobalName()
			if err != nil {
				return value.Null(), err
			}
			m.globals.Put(name, m.peek(0))

		case chunk.GET_UPVALUE:
			slot := int(code[fr.ip])
			fr.ip++
			m.push(m.readUpvalue(fr.fn.Upvalues[slot]))

		case chunk.SET_UPVALUE:
			slot := int(code[fr.ip])
			fr.ip++
			m.writeUpvalue(fr.fn.Upvalues[slot], m.peek(0))

		case chunk.CLOSURE:
			cidx := fr.fn.Fn.Chunk.ReadU16(fr.ip)
			fr.ip += 2
			childFn := fr.fn.Fn.Chunk.Functions[cidx]
			closure := &Closure{Fn: childFn, Upvalues: make([]arena.Handle, childFn.UpvalueCount)}
			for i := 0; i < childFn.UpvalueCount; i++ {
				isLocal := code[fr.ip] != 0
				idx := int(code[fr.ip+1])
				fr.ip += 2
				if isLocal {
					closure.Upvalues[i] = m.captureUpvalue(fr.returnSlot + idx)
				} else {
					closure.Upvalues[i] = fr.fn.Upvalues[idx]
				}
			}
			h := m.closures.Insert(closure)
			m.push(value.Ptr(value.PtrClosureHandle, h.Bits48()))

		case chunk.CALL:
			argc := int(code[fr.ip])
			fr.ip++
			if err := m.call(argc); err != nil {
				return value.Null(), err
			}

		case chunk.RETURN:
			result := m.pop()
			base := fr.returnSlot
			m.closeUpvalues(base)
			m.frames = m.frames[:len(m.frames)-1]
			m.stack = m.stack[:base]
			if len(m.frames) == 0 {
				return result, nil
			}
			m.push(result)

		default:
			return value.Null(), &InvalidChunkError{Message: "unknown opcode byte"}
		}
	}
}

func (m *VM) popGlobalName() (string, error) {
	v := m.pop()
	if !v.IsPtr() || v.PtrTag() != value.PtrString {
		return "", m.runtimeErr("global name operand is not a string")
	}
	name, ok := m.stringAt(v.HandleBits())
	if !ok {
		return "", m.runtimeErr("global name operand references a freed string")
	}
	return name, nil
}

func (m *VM) stdoutOrDefault() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// call implements spec.md §4.6's calling protocol for CALL<argc>.
func (m *VM) call(argc int) error {
	fnSlot := len(m.stack) - 1 - argc
	callee := m.stack[fnSlot]

	if !callee.IsPtr() {
		return m.runtimeErr("only functions can be called")
	}

	switch callee.PtrTag() {
	case value.PtrClosureHandle:
		h := arena.HandleFromBits48(callee.HandleBits())
		closure, ok := m.closures.Get(h)
		if !ok {
			return m.runtimeErr("call through a stale closure handle")
		}
		if closure.Fn.Arity != argc {
			return m.runtimeErr("wrong argument count")
		}
		if len(m.frames) >= maxFrames {
			return m.runtimeErr("Stack overflow")
		}
		m.frames = append(m.frames, callFrame{closure: h, fn: closure, ip: 0, returnSlot: fnSlot})
		m.reserveLocals(fnSlot, closure.Fn.LocalCount)
		return nil

	case value.PtrNativeFn:
		nf, ok := m.nativeAt(callee.HandleBits())
		if !ok {
			return m.runtimeErr("call through an unknown native function")
		}
		if nf.Arity != argc {
			return m.runtimeErr("wrong argument count")
		}
		args := append([]value.Value(nil), m.stack[fnSlot+1:]...)
		result, err := nf.Fn(m, args)
		if err != nil {
			return m.runtimeErr(err.Error())
		}
		m.stack = m.stack[:fnSlot]
		m.push(result)
		return nil

	default:
		return m.runtimeErr("only functions can be called")
	}
}
