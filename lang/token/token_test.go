package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		require.NotEmpty(t, k.String(), "kind %d has no string form", k)
	}
}

func TestKindStringUnknown(t *testing.T) {
	require.Contains(t, maxKind.String(), "kind(")
}

func TestLookup(t *testing.T) {
	cases := map[string]Kind{
		"true":    TRUE,
		"false":   FALSE,
		"null":    NULL,
		"if":      IF,
		"else":    ELSE,
		"while":   WHILE,
		"fn":      FN,
		"return":  RETURN,
		"puts":    PUTS,
		"and":     AND,
		"or":      OR,
		"x":       IDENT,
		"counter": IDENT,
	}
	for lit, want := range cases {
		require.Equal(t, want, Lookup(lit), "lit=%s", lit)
	}
}
