package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorded struct {
	level   string
	message string
}

func recordingFuncs(out *[]recorded) LogFuncs {
	record := func(level string) LogFunc {
		return func(format string, args ...interface{}) {
			*out = append(*out, recorded{level: level, message: format})
		}
	}
	return LogFuncs{
		Debugf: record("debug"),
		Infof:  record("info"),
		Warnf:  record("warn"),
		Errorf: record("error"),
	}
}

func TestLogger_Prefix(t *testing.T) {
	var out []recorded
	logger := NewLogger("charm: ", recordingFuncs(&out))

	logger.Infof("Handling event")
	logger.LogLevelf(LogLevelWarn, "Skipping target")

	assert.Equal(t, []recorded{
		{level: "info", message: "charm: Handling event"},
		{level: "warn", message: "charm: Skipping target"},
	}, out)
}

func TestWithPrefix(t *testing.T) {
	var out []recorded
	parent := NewLogger("charm: ", recordingFuncs(&out))

	WithPrefix(parent, "state: ").Errorf("Failed to release lock")

	assert.Equal(t, []recorded{{level: "error", message: "charm: state: Failed to release lock"}}, out)
}

func TestLogger_MissingFuncIsIgnored(t *testing.T) {
	logger := NewLogger("", LogFuncs{})

	assert.NotPanics(t, func() { logger.Debugf("nothing listens") })
}

func TestZapBackend_Observer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	backend := NewZapBackendWithCore(core).With("unit", "nagios/0")

	backend.Logger("charm: ").Infof("Pushing config, target: %s", "web-1")
	backend.Logger("").Debugf("Ignoring event")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "charm: Pushing config, target: web-1", entries[0].Message)
	assert.Equal(t, "nagios/0", entries[0].ContextMap()["unit"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestNewZapBackend(t *testing.T) {
	tests := []struct {
		name      string
		config    ZapConfig
		expectErr bool
	}{
		{name: "defaults", config: DefaultZapConfig()},
		{name: "console to stdout", config: ZapConfig{Level: "debug", Format: "console", Output: "stdout"}},
		{name: "invalid level", config: ZapConfig{Level: "verbose"}, expectErr: true},
		{name: "invalid format", config: ZapConfig{Level: "info", Format: "xml"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := NewZapBackend(tt.config)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			backend.Close()
		})
	}
}

func TestNewZapBackend_FileOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "charm.log")

	backend, err := NewZapBackend(ZapConfig{Level: "info", Format: "json", Output: output})
	require.NoError(t, err)

	backend.Logger("").Infof("Handling event, kind: %s", "config_changed")
	backend.Logger("").Debugf("below level")
	backend.Close()

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Handling event, kind: config_changed"`)
	assert.NotContains(t, string(data), "below level")
}
