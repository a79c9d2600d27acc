package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakePosLineCol(t *testing.T) {
	cases := []struct {
		line, col int
	}{
		{1, 1},
		{1, 80},
		{42, 7},
		{MaxLines, MaxCols},
	}
	for _, c := range cases {
		p := MakePos(c.line, c.col)
		gotLine, gotCol := p.LineCol()
		assert.Equal(t, c.line, gotLine)
		assert.Equal(t, c.col, gotCol)
	}
}

func TestPosUnknown(t *testing.T) {
	assert.True(t, Pos(0).Unknown())
	assert.False(t, MakePos(1, 1).Unknown())
}

func TestPositionString(t *testing.T) {
	cases := []struct {
		pos  Position
		want string
	}{
		{Position{Line: 3}, "3"},
		{Position{Line: 3, Col: 5}, "3:5"},
		{Position{Filename: "prog.weave", Line: 3}, "prog.weave:3"},
		{Position{Filename: "prog.weave", Line: 3, Col: 5}, "prog.weave:3:5"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.pos.String())
	}
}

func TestPosPosition(t *testing.T) {
	p := MakePos(10, 4)
	pos := p.Position("prog.weave")
	assert.Equal(t, Position{Filename: "prog.weave", Line: 10, Col: 4}, pos)
}
