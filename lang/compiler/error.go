package compiler

import "github.com/swordsmanluke/weave/lang/token"

// CompileError is one diagnostic produced while compiling a chunk, per
// spec.md §7. Compile reports every error it recovers from via
// synchronize(), but only the first is usually the most precise — panic
// mode suppresses cascades.
type CompileError struct {
	Position token.Position
	Msg      string
}

func (e *CompileError) Error() string {
	return e.Position.String() + ": " + e.Msg
}
