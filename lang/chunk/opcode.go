package chunk

import "fmt"

// Op is a single-byte bytecode instruction, per spec.md §4.5.
type Op uint8

// "x y ADD z" is a stack picture: the state of the stack (top-right) before
// and after the instruction executes. OP<field> marks an immediate operand
// following the opcode byte in the code stream.
const ( //nolint:revive
	CONSTANT Op = iota //          - CONSTANT<idx:u16>  c
	TRUE               //          - TRUE                true
	FALSE              //          - FALSE               false
	NULL               //          - NULL                null
	POP                //          v POP                 -

	NEGATE //  v NEGATE  r
	NOT    //  v NOT     r

	ADD //  a b ADD  r
	SUB //  a b SUB  r
	MUL //  a b MUL  r
	DIV //  a b DIV  r

	GREATER //  a b GREATER  bool
	LESS    //  a b LESS     bool
	EQUAL   //  a b EQUAL    bool

	PRINT //  v PRINT  v   (prints, value remains)

	JUMP          //          - JUMP<off:u16>           -     ip += off
	JUMP_IF_FALSE //          v JUMP_IF_FALSE<off:u16>  -     pops; ip += off if falsy
	LOOP          //          - LOOP<off:u16>           -     ip -= off

	GET_LOCAL //          - GET_LOCAL<slot:u8>   v
	SET_LOCAL //          v SET_LOCAL<slot:u8>   v

	GET_GLOBAL //       name GET_GLOBAL            v
	SET_GLOBAL //  val name SET_GLOBAL            val

	GET_UPVALUE //          - GET_UPVALUE<slot:u8>  v
	SET_UPVALUE //          v SET_UPVALUE<slot:u8>  v

	CLOSURE //              - CLOSURE<cidx:u16, (isLocal:u8, idx:u8)*n>  closure

	CALL //  fn a1..aN CALL<argc:u8>  result

	RETURN //  v RETURN  -   (pops frame)

	maxOp
)

var names = [...]string{
	CONSTANT:      "CONSTANT",
	TRUE:          "TRUE",
	FALSE:         "FALSE",
	NULL:          "NULL",
	POP:           "POP",
	NEGATE:        "NEGATE",
	NOT:           "NOT",
	ADD:           "ADD",
	SUB:           "SUB",
	MUL:           "MUL",
	DIV:           "DIV",
	GREATER:       "GREATER",
	LESS:          "LESS",
	EQUAL:         "EQUAL",
	PRINT:         "PRINT",
	JUMP:          "JUMP",
	JUMP_IF_FALSE: "JUMP_IF_FALSE",
	LOOP:          "LOOP",
	GET_LOCAL:     "GET_LOCAL",
	SET_LOCAL:     "SET_LOCAL",
	GET_GLOBAL:    "GET_GLOBAL",
	SET_GLOBAL:    "SET_GLOBAL",
	GET_UPVALUE:   "GET_UPVALUE",
	SET_UPVALUE:   "SET_UPVALUE",
	CLOSURE:       "CLOSURE",
	CALL:          "CALL",
	RETURN:        "RETURN",
}

func (op Op) String() string {
	if op < maxOp {
		if s := names[op]; s != "" {
			return s
		}
	}
	return fmt.Sprintf("op(%d)", op)
}
