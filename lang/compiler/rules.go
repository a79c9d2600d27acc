package compiler

import "github.com/swordsmanluke/weave/lang/token"

// precedence levels, low to high, per spec.md §4.3.
type precedence uint8

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type parseFn func(comp *Compiler, canAssign bool)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

// rules maps each token kind to its prefix/infix parsing behavior and
// infix binding precedence. Missing prefix for a token encountered in
// prefix position is a compile error (spec.md §4.3).
var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.NUMBER: {prefix: (*Compiler).number},
		token.STRING: {prefix: (*Compiler).stringLiteral},
		token.TRUE:   {prefix: (*Compiler).literal},
		token.FALSE:  {prefix: (*Compiler).literal},
		token.NULL:   {prefix: (*Compiler).literal},
		token.IDENT:  {prefix: (*Compiler).variable},
		token.CARET:  {prefix: (*Compiler).functionLiteral},

		token.LPAREN: {prefix: (*Compiler).grouping, infix: (*Compiler).call, prec: precCall},

		token.MINUS: {prefix: (*Compiler).unary, infix: (*Compiler).binary, prec: precTerm},
		token.PLUS:  {infix: (*Compiler).binary, prec: precTerm},
		token.SLASH: {infix: (*Compiler).binary, prec: precFactor},
		token.STAR:  {infix: (*Compiler).binary, prec: precFactor},
		token.BANG:  {prefix: (*Compiler).unary},

		token.EQEQ:   {infix: (*Compiler).binary, prec: precEquality},
		token.BANGEQ: {infix: (*Compiler).binary, prec: precEquality},
		token.LT:     {infix: (*Compiler).binary, prec: precComparison},
		token.LE:     {infix: (*Compiler).binary, prec: precComparison},
		token.GT:     {infix: (*Compiler).binary, prec: precComparison},
		token.GE:     {infix: (*Compiler).binary, prec: precComparison},

		token.AND:      {infix: (*Compiler).and_, prec: precAnd},
		token.AMPAMP:   {infix: (*Compiler).and_, prec: precAnd},
		token.OR:       {infix: (*Compiler).or_, prec: precOr},
		token.PIPEPIPE: {infix: (*Compiler).or_, prec: precOr},
	}
}

func getRule(k token.Kind) parseRule {
	return rules[k]
}
