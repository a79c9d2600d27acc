package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swordsmanluke/weave/internal/logging"
)

func TestDefaultsToStderrWhenNoFileConfigured(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeLog, err := logging.New(logging.Config{Level: "info"}, &stderr)
	require.NoError(t, err)
	defer closeLog()

	logger.Info("hello")
	assert.Contains(t, stderr.String(), "hello")
}

func TestLevelFiltersBelowThreshold(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeLog, err := logging.New(logging.Config{Level: "warn"}, &stderr)
	require.NoError(t, err)
	defer closeLog()

	logger.Info("should be dropped")
	logger.Warn("should appear")

	assert.NotContains(t, stderr.String(), "should be dropped")
	assert.Contains(t, stderr.String(), "should appear")
}

func TestJSONFormatProducesValidJSONLines(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeLog, err := logging.New(logging.Config{Level: "info", Format: "json"}, &stderr)
	require.NoError(t, err)
	defer closeLog()

	logger.Info("structured", "key", "value")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &decoded))
	assert.Equal(t, "value", decoded["key"])
}

func TestFileSinkWritesAndSuppressesConsoleByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weaver.log")

	var stderr bytes.Buffer
	logger, closeLog, err := logging.New(logging.Config{Level: "info", File: path}, &stderr)
	require.NoError(t, err)

	logger.Info("to file only")
	require.NoError(t, closeLog())

	assert.Empty(t, stderr.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file only")
}

func TestLogConsoleDuplicatesToStderrWhenFileSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weaver.log")

	var stderr bytes.Buffer
	logger, closeLog, err := logging.New(logging.Config{Level: "info", File: path, Console: true}, &stderr)
	require.NoError(t, err)
	defer closeLog()

	logger.Info("to both")

	assert.Contains(t, stderr.String(), "to both")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
}
