package replio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swordsmanluke/weave/internal/replio"
	"github.com/swordsmanluke/weave/lang/weaver"
)

func TestReplEchoesEachLinesResult(t *testing.T) {
	m := weaver.NewVM()
	in := strings.NewReader("1 + 2\n3 * 4\n")
	var out, errOut bytes.Buffer

	require.NoError(t, replio.Run(m, in, &out, &errOut))

	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "3\n")
	assert.Contains(t, out.String(), "12\n")
}

func TestReplRetainsGlobalsAcrossLines(t *testing.T) {
	m := weaver.NewVM()
	in := strings.NewReader("x = 5\nx + 1\n")
	var out, errOut bytes.Buffer

	require.NoError(t, replio.Run(m, in, &out, &errOut))

	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "6\n")
}

func TestReplPrintsErrorsToErrOutAndKeepsReading(t *testing.T) {
	m := weaver.NewVM()
	in := strings.NewReader("y\n1 + 1\n")
	var out, errOut bytes.Buffer

	require.NoError(t, replio.Run(m, in, &out, &errOut))

	assert.NotEmpty(t, errOut.String())
	assert.Contains(t, out.String(), "2\n")
}

func TestReplSkipsBlankLinesWithoutRunningThem(t *testing.T) {
	m := weaver.NewVM()
	in := strings.NewReader("\n\n5\n")
	var out, errOut bytes.Buffer

	require.NoError(t, replio.Run(m, in, &out, &errOut))

	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "5\n")
}
