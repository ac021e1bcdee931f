package logger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetWriter(buf)
	SetColour(false)
	prev := GetLevel()
	SetLevel(level)
	t.Cleanup(func() {
		SetLevel(prev)
		SetColour(true)
		_ = SetLogOutput('c')
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t, WARN)

	Info("hidden")
	Warn("shown", 3, errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] logger_test.go:")
	assert.Contains(t, out, "shown 3 boom")
}

func TestObjectsAreDumpedAsJSON(t *testing.T) {
	buf := captureLogs(t, DEBUG)

	Debug("payload", map[string]int{"goals": 2})

	out := buf.String()
	assert.Contains(t, out, "[Object of type map[string]int]")
	assert.Contains(t, out, `"goals": 2`)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, level)

	level, err = ParseLevel("Warning")
	require.NoError(t, err)
	assert.Equal(t, WARN, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetLogOutputRejectsUnknownType(t *testing.T) {
	assert.Error(t, SetLogOutput('x'))
}

func TestSetLogOutputToFile(t *testing.T) {
	path := t.TempDir() + "/scoresight.log"
	SetLogFile(path)
	t.Cleanup(func() {
		SetLogFile("")
		_ = SetLogOutput('c')
	})

	require.NoError(t, SetLogOutput('f'))
	Error("written to file")
	require.NoError(t, SetLogOutput('c'))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
