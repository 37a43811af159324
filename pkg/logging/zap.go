package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapConfig defines the zap backend configuration
type ZapConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "console"
	Output string `yaml:"output"` // "stderr", "stdout", file path
	Caller bool   `yaml:"caller"` // Include caller information
}

// DefaultZapConfig logs JSON to stderr, which the Juju agent captures into
// the unit's debug log.
func DefaultZapConfig() ZapConfig {
	return ZapConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// ZapBackend hides zap types behind the Logger interface
type ZapBackend struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	close  func()
}

// NewZapBackend creates a zap backed logger from configuration
func NewZapBackend(config ZapConfig) (*ZapBackend, error) {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	switch config.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json", "":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("invalid log format: %s", config.Format)
	}

	closeFn := func() {}
	var writeSyncer zapcore.WriteSyncer
	switch config.Output {
	case "stderr", "":
		writeSyncer = zapcore.Lock(os.Stderr)
	case "stdout":
		writeSyncer = zapcore.Lock(os.Stdout)
	default:
		ws, closeOut, err := zap.Open(config.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to open log output %s: %w", config.Output, err)
		}
		writeSyncer = ws
		closeFn = closeOut
	}

	opts := []zap.Option{}
	if config.Caller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(2))
	}

	zapLogger := zap.New(zapcore.NewCore(encoder, writeSyncer, level), opts...)

	return &ZapBackend{
		logger: zapLogger,
		sugar:  zapLogger.Sugar(),
		close:  closeFn,
	}, nil
}

// NewZapBackendWithCore wraps an existing core, used by tests with observers.
func NewZapBackendWithCore(core zapcore.Core) *ZapBackend {
	zapLogger := zap.New(core)
	return &ZapBackend{
		logger: zapLogger,
		sugar:  zapLogger.Sugar(),
		close:  func() {},
	}
}

// Logger returns a prefixed Logger writing through this backend
func (z *ZapBackend) Logger(prefix string) Logger {
	return NewLogger(prefix, LogFuncs{
		Debugf: z.sugar.Debugf,
		Infof:  z.sugar.Infof,
		Warnf:  z.sugar.Warnf,
		Errorf: z.sugar.Errorf,
	})
}

// With returns a backend whose entries carry the given key/value pairs
func (z *ZapBackend) With(keysAndValues ...interface{}) *ZapBackend {
	sugar := z.sugar.With(keysAndValues...)
	return &ZapBackend{
		logger: sugar.Desugar(),
		sugar:  sugar,
		close:  z.close,
	}
}

// Close flushes buffered entries and releases the output
func (z *ZapBackend) Close() {
	// Syncing stderr fails with EINVAL when it is a pipe.
	_ = z.logger.Sync()
	z.close()
}
