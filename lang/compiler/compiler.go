// Package compiler implements Weave's single-pass Pratt compiler: scanning,
// parsing, scope/upvalue resolution and bytecode emission all happen in one
// pass over the token stream, with no intermediate AST (spec.md §4.3). See
// DESIGN.md for why this diverges from nenuphar's three-pass
// parse/resolve/lower pipeline; the doc-comment density and error-list
// diagnostics idiom below otherwise follow nenuphar's compiler/parser style.
package compiler

import (
	"github.com/swordsmanluke/weave/lang/chunk"
	"github.com/swordsmanluke/weave/lang/scanner"
	"github.com/swordsmanluke/weave/lang/token"
	"github.com/swordsmanluke/weave/lang/value"
)

// Compiler turns one source unit into a top-level *chunk.Function ("the
// script"), recursively compiling any nested fn literals into their own
// chunk.Function values reachable through CLOSURE instructions.
type Compiler struct {
	scan     *scanner.Scanner
	filename string

	cur, prev token.Token
	errors    []error
	panicMode bool

	current *funcState
}

// Compile compiles src (named filename for diagnostics) into the script
// function. It always returns a non-nil Function; callers must check
// len(errs) == 0 before trusting the bytecode.
func Compile(filename, src string) (*chunk.Function, []error) {
	fn := &chunk.Function{Name: "script", Chunk: chunk.New()}
	fs := &funcState{fn: fn, kind: funcScript}
	fs.addLocal("")
	c := &Compiler{
		scan:     scanner.New(filename, src),
		filename: filename,
		current:  fs,
	}

	c.advance()
	c.compileBody(token.EOF)
	if !c.check(token.EOF) {
		c.errorAtCur("expect end of input")
	}
	fn.LocalCount = len(fs.locals)
	return fn, c.errors
}

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.scan.Scan()
		if c.cur.Kind != token.ILLEGAL {
			return
		}
		c.errorAtCur(c.cur.Lit)
	}
}

func (c *Compiler) check(k token.Kind) bool {
	return c.cur.Kind == k
}

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.check(k) {
		c.advance()
		return
	}
	c.errorAtCur(msg)
}

func (c *Compiler) line() int { return c.prev.Line }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errors = append(c.errors, &CompileError{Position: tok.Pos.Position(c.filename), Msg: msg})
}

func (c *Compiler) errorAtCur(msg string)  { c.errorAt(c.cur, msg) }
func (c *Compiler) errorAtPrev(msg string) { c.errorAt(c.prev, msg) }

// synchronize discards tokens after a parse error until a likely statement
// boundary, so one mistake doesn't cascade into a wall of errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for !c.check(token.EOF) {
		if c.prev.Kind == token.SEMI {
			return
		}
		switch c.cur.Kind {
		case token.IF, token.WHILE, token.FN, token.RETURN, token.PUTS:
			return
		}
		c.advance()
	}
}

// --- chunk/emission helpers ---

func (c *Compiler) chunk() *chunk.Chunk { return c.current.fn.Chunk }

func (c *Compiler) emitByte(b byte)    { c.chunk().WriteByte(b, c.line()) }
func (c *Compiler) emitOp(op chunk.Op) { c.chunk().WriteOp(op, c.line()) }
func (c *Compiler) emitU16(n uint16)   { c.chunk().WriteU16(n, c.line()) }
func (c *Compiler) emitByteOperand(op chunk.Op, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

// emitGlobalOp pushes name as a string constant and emits op, which pops it
// (spec.md §4.5: GET_GLOBAL/SET_GLOBAL take the identifier from the stack,
// not an immediate operand). For SET_GLOBAL the caller must have already
// compiled the value being assigned, so the stack reads "val name" when op
// executes, matching its stack picture.
func (c *Compiler) emitGlobalOp(op chunk.Op, name string) {
	v := c.chunk().AddStringConstant(name)
	idx := c.chunk().AddConstant(v)
	c.emitOp(chunk.CONSTANT)
	c.emitU16(idx)
	c.emitOp(op)
}

func (c *Compiler) emitJump(op chunk.Op) int {
	c.emitOp(op)
	off := len(c.chunk().Code)
	c.emitU16(0xFFFF)
	return off
}

func (c *Compiler) patchJump(off int) {
	jump := len(c.chunk().Code) - (off + 2)
	c.chunk().PatchU16(off, uint16(jump))
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.LOOP)
	afterOperand := len(c.chunk().Code) + 2
	c.emitU16(uint16(afterOperand - loopStart))
}

// --- variable resolution ---

func (c *Compiler) resolveAndGet(name string) {
	if c.current.kind != funcScript {
		if slot, ok := resolveLocal(c.current, name); ok {
			c.emitByteOperand(chunk.GET_LOCAL, byte(slot))
			return
		}
		if idx, ok := c.resolveUpvalue(c.current, name); ok {
			c.emitByteOperand(chunk.GET_UPVALUE, idx)
			return
		}
	}
	c.emitGlobalOp(chunk.GET_GLOBAL, name)
}

// bindVariable emits the store for a value already sitting on top of the
// stack, resolving name the same way for a plain assignment or a fn
// declaration's implicit bind. At script depth there is no local concept,
// so every name is a global (spec.md §4.3); inside a function, an unresolved
// name declares a brand-new local rather than implicitly creating a global.
func (c *Compiler) bindVariable(name string) {
	if c.current.kind == funcScript {
		c.emitGlobalOp(chunk.SET_GLOBAL, name)
		return
	}
	if slot, ok := resolveLocal(c.current, name); ok {
		c.emitByteOperand(chunk.SET_LOCAL, byte(slot))
		return
	}
	if idx, ok := c.resolveUpvalue(c.current, name); ok {
		c.emitByteOperand(chunk.SET_UPVALUE, idx)
		return
	}
	slot, ok := c.current.addLocal(name)
	if !ok {
		c.errorAtPrev("too many local variables in function")
		return
	}
	c.emitByteOperand(chunk.SET_LOCAL, byte(slot))
}

// --- expressions (Pratt core) ---

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := getRule(c.prev.Kind)
	if rule.prefix == nil {
		c.errorAtPrev("expect expression")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(c.cur.Kind).prec {
		c.advance()
		infix := getRule(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.errorAtPrev("invalid assignment target")
	}
}

func (c *Compiler) number(canAssign bool) {
	c.chunk().EmitConstant(value.Number(c.prev.Num), c.line())
}

func (c *Compiler) stringLiteral(canAssign bool) {
	v := c.chunk().AddStringConstant(c.prev.Str)
	c.chunk().EmitConstant(v, c.line())
}

func (c *Compiler) literal(canAssign bool) {
	switch c.prev.Kind {
	case token.TRUE:
		c.emitOp(chunk.TRUE)
	case token.FALSE:
		c.emitOp(chunk.FALSE)
	case token.NULL:
		c.emitOp(chunk.NULL)
	}
}

func (c *Compiler) variable(canAssign bool) {
	name := c.prev.Lit
	if canAssign && c.match(token.EQ) {
		c.expression()
		c.bindVariable(name)
		return
	}
	c.resolveAndGet(name)
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "expect ')' after expression")
}

func (c *Compiler) unary(canAssign bool) {
	op := c.prev.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		c.emitOp(chunk.NEGATE)
	case token.BANG:
		c.emitOp(chunk.NOT)
	}
}

func (c *Compiler) binary(canAssign bool) {
	op := c.prev.Kind
	rule := getRule(op)
	c.parsePrecedence(rule.prec + 1)
	switch op {
	case token.PLUS:
		c.emitOp(chunk.ADD)
	case token.MINUS:
		c.emitOp(chunk.SUB)
	case token.STAR:
		c.emitOp(chunk.MUL)
	case token.SLASH:
		c.emitOp(chunk.DIV)
	case token.EQEQ:
		c.emitOp(chunk.EQUAL)
	case token.BANGEQ:
		c.emitOp(chunk.EQUAL)
		c.emitOp(chunk.NOT)
	case token.LT:
		c.emitOp(chunk.LESS)
	case token.LE:
		c.emitOp(chunk.GREATER)
		c.emitOp(chunk.NOT)
	case token.GT:
		c.emitOp(chunk.GREATER)
	case token.GE:
		c.emitOp(chunk.LESS)
		c.emitOp(chunk.NOT)
	}
}

// and_/or_ short-circuit by jumping, not by duplicating the left operand:
// spec.md's JUMP_IF_FALSE always pops (there is no DUP opcode), so the left
// value can't be inspected and kept. Each compiles to an if/else shape that
// produces a coerced TRUE/FALSE in the short-circuited branch and the other
// operand's raw value in the branch that evaluates it (see DESIGN.md).
func (c *Compiler) and_(canAssign bool) {
	falseJump := c.emitJump(chunk.JUMP_IF_FALSE)
	c.parsePrecedence(precAnd)
	endJump := c.emitJump(chunk.JUMP)
	c.patchJump(falseJump)
	c.emitOp(chunk.FALSE)
	c.patchJump(endJump)
}

func (c *Compiler) or_(canAssign bool) {
	falseJump := c.emitJump(chunk.JUMP_IF_FALSE)
	c.emitOp(chunk.TRUE)
	endJump := c.emitJump(chunk.JUMP)
	c.patchJump(falseJump)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argc := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			argc++
			if argc > 255 {
				c.errorAtPrev("too many arguments")
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expect ')' after arguments")
	c.emitByteOperand(chunk.CALL, byte(argc))
}

func (c *Compiler) functionLiteral(canAssign bool) {
	c.function("", funcFunction)
}

// function compiles a parameter list and body into a fresh chunk.Function,
// linking it into the enclosing chunk's Functions table and emitting the
// CLOSURE instruction (plus its trailing upvalue descriptor bytes) that
// instantiates it at runtime. Slot 0 of every function's locals is reserved
// for the active closure itself (never addressable by name), so parameters
// occupy slots 1..arity.
func (c *Compiler) function(name string, kind funcKind) {
	fn := &chunk.Function{Name: name, Chunk: chunk.New()}
	fs := &funcState{enclosing: c.current, fn: fn, kind: kind}
	c.current = fs

	fs.addLocal("")

	c.consume(token.LPAREN, "expect '(' after function name")
	if !c.check(token.RPAREN) {
		for {
			fn.Arity++
			c.consume(token.IDENT, "expect parameter name")
			if _, ok := fs.addLocal(c.prev.Lit); !ok {
				c.errorAtPrev("too many parameters")
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expect ')' after parameters")
	c.consume(token.LBRACE, "expect '{' before function body")
	c.compileBody(token.RBRACE)
	c.consume(token.RBRACE, "expect '}' after function body")

	fn.UpvalueCount = len(fs.upvalues)
	fn.LocalCount = len(fs.locals)
	upvalues := fs.upvalues
	c.current = fs.enclosing

	cidx := c.chunk().AddFunction(fn)
	c.emitOp(chunk.CLOSURE)
	c.emitU16(cidx)
	for _, uv := range upvalues {
		c.emitByte(boolByte(uv.isLocal))
		c.emitByte(uv.index)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// --- statements ---

// statement compiles one statement and reports whether it left a value on
// top of the stack. compileBody uses this to implement tail-position value
// retention; compileBlock (if/while bodies) always discards it instead.
func (c *Compiler) statement() bool {
	switch {
	case c.match(token.PUTS):
		return c.putsStatement()
	case c.match(token.IF):
		c.ifStatement()
		return false
	case c.match(token.WHILE):
		c.whileStatement()
		return false
	case c.match(token.FN):
		return c.fnStatement()
	case c.match(token.RETURN):
		c.returnStatement()
		return false
	default:
		return c.expressionStatement()
	}
}

func (c *Compiler) expressionStatement() bool {
	c.expression()
	return true
}

// putsStatement relies on PRINT's stack picture ("v PRINT v"): the printed
// value is not consumed, so puts behaves like any other value-producing
// statement for tail-position purposes.
func (c *Compiler) putsStatement() bool {
	c.expression()
	c.emitOp(chunk.PRINT)
	return true
}

// returnStatement treats a bare "return" (immediately followed by a
// statement terminator) as returning null. Since ';' is only an optional
// statement separator (see compileBody/compileBlock), "no value follows"
// is detected by the same tokens that end a statement: ';', '}', or EOF.
func (c *Compiler) returnStatement() {
	if c.current.kind == funcScript {
		c.errorAtPrev("cannot return from top-level script")
	}
	if c.check(token.SEMI) || c.check(token.RBRACE) || c.check(token.EOF) {
		c.emitOp(chunk.NULL)
	} else {
		c.expression()
	}
	c.emitOp(chunk.RETURN)
}

func (c *Compiler) fnStatement() bool {
	c.consume(token.IDENT, "expect function name")
	name := c.prev.Lit
	c.function(name, funcFunction)
	c.bindVariable(name)
	return true
}

// ifStatement compiles "if expr { ... } [else { ... }]". The condition is a
// bare expression, no parentheses required (spec.md §6); a parenthesized
// condition still parses through the ordinary grouping rule.
func (c *Compiler) ifStatement() {
	c.expression()

	thenJump := c.emitJump(chunk.JUMP_IF_FALSE)
	c.consume(token.LBRACE, "expect '{' before if body")
	c.compileBlock()

	elseJump := c.emitJump(chunk.JUMP)
	c.patchJump(thenJump)

	if c.match(token.ELSE) {
		if c.check(token.IF) {
			c.advance()
			c.ifStatement()
		} else {
			c.consume(token.LBRACE, "expect '{' before else body")
			c.compileBlock()
		}
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.expression()

	exitJump := c.emitJump(chunk.JUMP_IF_FALSE)
	c.consume(token.LBRACE, "expect '{' before while body")
	c.compileBlock()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
}

// skipStatementSeparators consumes ';' is a purely optional statement
// separator in Weave — statements are otherwise delimited implicitly, by
// whichever token ends the current expression/block (spec.md §4.3 never
// requires one; the end-to-end scenarios in §8 freely omit it between
// statements) — so any run of zero or more is swallowed here rather than
// required by each statement form.
func (c *Compiler) skipStatementSeparators() {
	for c.match(token.SEMI) {
	}
}

// compileBlock compiles an if/while body: every statement's value (if any)
// is discarded, regardless of position, per spec.md §8's traced semantics —
// only a function/script body's final statement is kept for its RETURN.
// Blocks do not open a new scope: locals are function-scoped (spec.md §3),
// so a name first assigned inside a block keeps its slot until the
// enclosing function returns.
func (c *Compiler) compileBlock() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		hadValue := c.statement()
		if c.panicMode {
			c.synchronize()
		}
		c.skipStatementSeparators()
		if hadValue {
			c.emitOp(chunk.POP)
		}
	}
	c.consume(token.RBRACE, "expect '}' after block")
}

// compileBody compiles a function or script body up to terminator (RBRACE
// or EOF), implementing tail-position value retention: every statement's
// value is popped except the last one immediately preceding terminator,
// which instead feeds the body's implicit or explicit RETURN. If the final
// statement left no value (e.g. it was an if/while/return), an explicit
// NULL is pushed first.
func (c *Compiler) compileBody(terminator token.Kind) {
	tailValue := false
	for !c.check(terminator) && !c.check(token.EOF) {
		tailValue = c.statement()
		if c.panicMode {
			c.synchronize()
		}
		c.skipStatementSeparators()
		if !c.check(terminator) && !c.check(token.EOF) {
			if tailValue {
				c.emitOp(chunk.POP)
			}
			tailValue = false
		}
	}
	if !tailValue {
		c.emitOp(chunk.NULL)
	}
	c.emitOp(chunk.RETURN)
}
