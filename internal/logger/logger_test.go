package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetLevel(LogLevelInfo)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestInfoLogging(t *testing.T) {
	buf := capture(t)

	Info("Test message: %s", "info")

	assert.Contains(t, buf.String(), "Test message: info")
}

func TestInfoTagged(t *testing.T) {
	buf := capture(t)

	InfoTagged([]string{"Google", "test@example.com"}, "Test message")
	output := buf.String()

	assert.Contains(t, output, "[Google][test@example.com]")
	assert.Contains(t, output, "Test message")
}

func TestLogLevel(t *testing.T) {
	buf := capture(t)

	SetLevel(LogLevelError)
	Info("This should not appear")
	Warning("Nor this")
	assert.Zero(t, buf.Len(), "info/warning logged when level was set to Error")

	Error("boom")
	assert.Contains(t, buf.String(), "boom")
}

func TestDebugHiddenByDefault(t *testing.T) {
	buf := capture(t)

	DebugTagged([]string{"search"}, "dropped scroll")
	assert.Zero(t, buf.Len())

	SetLevel(LogLevelDebug)
	DebugTagged([]string{"search"}, "dropped scroll")
	assert.Contains(t, buf.String(), "[search] dropped scroll")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarning, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
