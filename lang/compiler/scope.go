package compiler

import "github.com/swordsmanluke/weave/lang/chunk"

type funcKind uint8

const (
	funcScript funcKind = iota
	funcFunction
)

// localVar is one entry in a funcState's locals list. Locals are
// function-scoped: a name declared anywhere in a function body (an if or
// while body included) keeps its slot until the function returns, so slot
// indices are stable for the whole of one function's compilation.
type localVar struct {
	name string
}

// upvalueDesc records how a function's Nth upvalue is bound: either to a
// local slot in the immediately enclosing function, or to one of that
// enclosing function's own upvalues (chained capture).
type upvalueDesc struct {
	index   byte
	isLocal bool
}

// funcState is the compile-time analog of spec.md §3's "Scope": one per
// function literal currently being compiled, chained through enclosing to
// form the nesting stack resolveUpvalue walks. Grounded conceptually on
// nenuphar's resolver Binding/Scope vocabulary (Local/Cell/Free), adapted
// to single-pass compilation: there is no separate resolve pass here, this
// bookkeeping is built and consumed inline as the Pratt compiler descends.
type funcState struct {
	enclosing *funcState
	fn        *chunk.Function
	kind      funcKind

	locals   []localVar
	upvalues []upvalueDesc
}

const maxUpvalues = 255
const maxLocalsPerFunc = 256

// addLocal declares a new local for name and returns its slot, or ok=false
// if the function has exhausted its 256 local slots (spec.md §8: "local
// slot indices ... are < 256").
func (fs *funcState) addLocal(name string) (slot int, ok bool) {
	if len(fs.locals) >= maxLocalsPerFunc {
		return 0, false
	}
	fs.locals = append(fs.locals, localVar{name: name})
	return len(fs.locals) - 1, true
}

// resolveLocal reverse-scans fs's own locals (never an enclosing
// function's), so the most recently declared shadowing binding of name
// wins, per spec.md §4.3.
func resolveLocal(fs *funcState, name string) (slot int, ok bool) {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

// resolveUpvalue recursively walks the enclosing funcState chain per
// spec.md §4.3's resolve_upvalue: absent at the outermost (script) level,
// else check the immediate parent's locals, else recurse into the
// parent's own upvalues. Returns the index to encode after this
// function's CLOSURE instruction.
func (c *Compiler) resolveUpvalue(fs *funcState, name string) (idx byte, ok bool) {
	if fs.enclosing == nil {
		return 0, false
	}
	if slot, found := resolveLocal(fs.enclosing, name); found {
		return c.addUpvalue(fs, byte(slot), true), true
	}
	if parentIdx, found := c.resolveUpvalue(fs.enclosing, name); found {
		return c.addUpvalue(fs, parentIdx, false), true
	}
	return 0, false
}

// addUpvalue dedupes against fs's existing upvalue list by (isLocal,
// index) pair before appending, per spec.md §4.3. Exceeding 255 upvalues
// is a compile error (§7); the returned index is then meaningless, but the
// recorded diagnostic already invalidates the bytecode.
func (c *Compiler) addUpvalue(fs *funcState, index byte, isLocal bool) byte {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return byte(i)
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.errorAtPrev("too many upvalues in function")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	return byte(len(fs.upvalues) - 1)
}
