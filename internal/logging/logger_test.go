package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	testCases := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, lvl)

	lvl, err = ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("scanner").
		With("root", "/tmp/project").
		Warn(context.Background(), errors.New("boom"), "skipping entry", "path", "app/x.txt")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "skipping entry", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "scanner", record["component"])
	assert.Equal(t, "boom", record["error"])
	assert.Equal(t, "/tmp/project", record["root"])
	assert.Equal(t, "app/x.txt", record["path"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	logger.Debug(context.Background(), "hidden debug")
	logger.Info(context.Background(), "hidden info")
	assert.Empty(t, buf.String())

	logger.Error(context.Background(), errors.New("bad"), "shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "error=bad")
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})
	_ = parent.With("child", true)

	parent.Info(context.Background(), "parent only")
	assert.NotContains(t, buf.String(), "child=true")
}

func TestNopLogger(t *testing.T) {
	logger := OrNop(nil)
	require.NotNil(t, logger)

	// must not panic
	logger.Error(context.Background(), errors.New("x"), "discarded")
	logger.With("a", 1).WithComponent("c").Info(context.Background(), "discarded")
}
