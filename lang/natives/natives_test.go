package natives_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swordsmanluke/weave/lang/weaver"
)

func TestClockReturnsANumber(t *testing.T) {
	m := weaver.NewVM()
	v, err := weaver.Run(m, "<test>", "clock()")
	require.NoError(t, err)
	assert.True(t, v.IsNumber())
}

func TestInputReadsOneLineFromConfiguredStdin(t *testing.T) {
	m := weaver.NewVM()
	m.Stdin = strings.NewReader("hello world\nsecond line\n")

	v, err := weaver.Run(m, "<test>", "input()")
	require.NoError(t, err)
	assert.Equal(t, "hello world", m.Display(v))

	v, err = weaver.Run(m, "<test>", "input()")
	require.NoError(t, err)
	assert.Equal(t, "second line", m.Display(v))
}

func TestPrintWritesDisplayRepresentationAndReturnsNull(t *testing.T) {
	m := weaver.NewVM()
	var out bytes.Buffer
	m.Stdout = &out

	v, err := weaver.Run(m, "<test>", `print(1 + 2)`)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.Equal(t, "3\n", out.String())
}

func TestWriteThenReadRoundTripsFileContents(t *testing.T) {
	m := weaver.NewVM()
	path := filepath.Join(t.TempDir(), "out.txt")

	_, err := weaver.Run(m, "<test>", `write("`+escapePath(path)+`", "weave")`)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "weave", string(data))

	v, err := weaver.Run(m, "<test>", `read("`+escapePath(path)+`")`)
	require.NoError(t, err)
	assert.Equal(t, "weave", m.Display(v))
}

func escapePath(p string) string {
	return strings.ReplaceAll(p, `\`, `\\`)
}
