package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/domscope/pkg/config"
)

func TestInitialize(t *testing.T) {
	t.Run("json output carries level, name, and fields", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &zaptest.Buffer{}
		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "json",
			ServiceName: "domscope-test",
		}, buf)

		logger := GetLogger()
		require.NotNil(t, logger)
		logger.Info("session started", zap.String("session_id", "abc123"))
		require.NoError(t, logger.Sync())

		out := buf.String()
		assert.Contains(t, out, `"INFO"`)
		assert.Contains(t, out, "domscope-test")
		assert.Contains(t, out, "session started")
		assert.Contains(t, out, "abc123")
	})

	t.Run("initialization happens exactly once", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		first := &zaptest.Buffer{}
		second := &zaptest.Buffer{}
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "first"}, first)
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "second"}, second)

		GetLogger().Info("who am I")
		assert.Contains(t, first.String(), "first")
		assert.Empty(t, second.String())
	})

	t.Run("an invalid level falls back to info", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &zaptest.Buffer{}
		Initialize(config.LoggerConfig{Level: "nonsense", Format: "json", ServiceName: "domscope-test"}, buf)

		logger := GetLogger()
		logger.Debug("invisible")
		logger.Info("visible")

		out := buf.String()
		assert.NotContains(t, out, "invisible")
		assert.Contains(t, out, "visible")
	})

	t.Run("console format colorizes the level", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &zaptest.Buffer{}
		Initialize(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "domscope-test"}, buf)

		GetLogger().Warn("heads up")
		assert.Contains(t, buf.String(), colorYellow+"WARN"+colorReset)
	})
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "fallback is a development logger")
}

func TestSyncWithoutLogger(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	// Must not panic with no logger installed.
	Sync()
}
