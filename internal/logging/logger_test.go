package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, errors.New("careful"), "warn message")
	logger.Error(ctx, errors.New("broken"), "error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error=careful")
	assert.Contains(t, out, "error message")
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("scanner").
		With("run", 7).
		Info(context.Background(), "scanned", "files", 3, 99, "ignored", "dangling")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "scanned", entry["msg"])
	assert.Equal(t, "scanner", entry["component"])
	assert.Equal(t, float64(7), entry["run"])
	assert.Equal(t, float64(3), entry["files"])
	assert.NotContains(t, entry, "dangling")
}

func TestWithDoesNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	_ = base.With("child", true)
	base.Info(context.Background(), "parent")

	assert.NotContains(t, buf.String(), "child")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("x"), "discarded")
	})
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Output: &buf})

	op := logger.StartOperation("generate")
	op.End(context.Background(), "pages", 2)
	assert.Contains(t, buf.String(), "operation=generate")
	assert.Contains(t, buf.String(), "pages=2")
	assert.Contains(t, buf.String(), "duration_ms=")

	buf.Reset()
	StartOperation(logger, "scan").EndWithError(context.Background(), errors.New("read failed"))
	assert.Contains(t, buf.String(), "Operation failed")
	assert.Contains(t, buf.String(), "read failed")
}

func TestConsole(t *testing.T) {
	t.Run("quiet mode prints only start finish and warnings", func(t *testing.T) {
		var buf bytes.Buffer
		c := NewConsole(&buf, false)

		c.Start("FrontNote - dev")
		c.Read("a.css")
		c.Write("guide/index.html")
		c.Render("a.css")
		c.Copy("assets/a.png", "guide/assets/a.png")
		c.Warn("unterminated block in %s", "b.css")
		c.Finish("done")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "[Start]")
		assert.Contains(t, lines[0], "FrontNote - dev")
		assert.Contains(t, lines[1], "[Warn]")
		assert.Contains(t, lines[1], "b.css")
		assert.Contains(t, lines[2], "[Finish]")
	})

	t.Run("verbose mode prints details", func(t *testing.T) {
		var buf bytes.Buffer
		c := NewConsole(&buf, true)
		assert.True(t, c.Verbose())

		c.Read("a.css")
		c.Copy("assets/a.png", "guide/assets/a.png")

		out := buf.String()
		assert.Contains(t, out, "[Read] a.css")
		assert.Contains(t, out, "[Copy] assets/a.png => guide/assets/a.png")
	})

	t.Run("nil console is silent", func(t *testing.T) {
		var c *Console
		assert.False(t, c.Verbose())
		assert.NotPanics(t, func() {
			c.Start("x")
			c.Read("x")
			c.Warn("x")
		})
	})
}
