package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/anvil/internal/infrastructure/config"
)

func TestConsoleHandler_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug"}).With("system", "journal")

	logger.Info("reconciled", "rows", 3)
	logger.Warn("statement skipped", "file", "2024_01.json")
	logger.Error("ledger failed")
	logger.Debug("decoded", "transactions", 12)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "reconciled rows=3", lines[0])
	assert.Equal(t, "WARN: statement skipped file=2024_01.json", lines[1])
	assert.Equal(t, "ERROR: ledger failed", lines[2])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[journal\] DEBUG: decoded transactions=12$`, lines[3])
}

func TestConsoleHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "warn"})

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	assert.Equal(t, "WARN: shown\n", buf.String())
}

func TestConsoleHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{}).WithGroup("run").With("id", "abc")

	logger.Info("saved", slog.Group("totals", "journal", "10", "bank", "12"))

	assert.Equal(t, "saved run.id=abc run.totals.journal=10 run.totals.bank=12\n", buf.String())
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, config.LoggingConfig{Format: "json"}).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	NewLoggerTo(&buf, config.LoggingConfig{Format: "text"}).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
