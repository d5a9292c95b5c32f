package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" DEBUG "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LogLevelWarn, &buf)

	logger.Info("hidden %d", 1)
	assert.Empty(t, buf.String())

	logger.Warn("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Equal(t, LogLevelWarn, logger.GetLevel())
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LogLevelDebug, &buf).
		WithField("analysis_id", "abc").
		WithFields(map[string]interface{}{"n_sims": 1000})

	logger.Debug("fitted")
	out := buf.String()
	assert.Contains(t, out, "analysis_id=abc")
	assert.Contains(t, out, "n_sims=1000")
	assert.Equal(t, LogLevelDebug, logger.GetLevel())
}
