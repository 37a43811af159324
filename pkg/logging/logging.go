package logging

// Levels accepted by LogLevelf
const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Logger is implemented by every logger handed to charm packages. Messages
// are printf style formats.
type Logger interface {
	LogLevelf(level int, format string, args ...interface{})
	Debugf(msg string, args ...interface{})
	Infof(msg string, args ...interface{})
	Warnf(msg string, args ...interface{})
	Errorf(msg string, args ...interface{})
}

type LogLevelFunc func(level int, format string, args ...interface{})
type LogFunc func(format string, args ...interface{})

// LogFuncs are the sinks of a logger. When LogLevelf is set it receives
// every level and the per-level funcs are ignored; a nil sink drops the entry.
type LogFuncs struct {
	LogLevelf LogLevelFunc
	Debugf    LogFunc
	Infof     LogFunc
	Warnf     LogFunc
	Errorf    LogFunc
}

func (f LogFuncs) sink(level int) LogFunc {
	if f.LogLevelf != nil {
		return func(format string, args ...interface{}) {
			f.LogLevelf(level, format, args...)
		}
	}
	switch level {
	case LogLevelDebug:
		return f.Debugf
	case LogLevelInfo:
		return f.Infof
	case LogLevelWarn:
		return f.Warnf
	case LogLevelError:
		return f.Errorf
	}
	return nil
}

type prefixLogger struct {
	prefix string
	funcs  LogFuncs
}

func NewLogger(prefix string, funcs LogFuncs) Logger {
	return &prefixLogger{
		prefix: prefix,
		funcs:  funcs,
	}
}

// WithPrefix returns a logger writing through parent, with prefix placed
// after the parent's own prefix.
func WithPrefix(parent Logger, prefix string) Logger {
	return NewLogger(prefix, LogFuncs{LogLevelf: parent.LogLevelf})
}

func (l *prefixLogger) LogLevelf(level int, format string, args ...interface{}) {
	fn := l.funcs.sink(level)
	if fn == nil {
		return
	}
	fn(l.prefix+format, args...)
}

func (l *prefixLogger) Debugf(msg string, args ...interface{}) {
	l.LogLevelf(LogLevelDebug, msg, args...)
}

func (l *prefixLogger) Infof(msg string, args ...interface{}) {
	l.LogLevelf(LogLevelInfo, msg, args...)
}

func (l *prefixLogger) Warnf(msg string, args ...interface{}) {
	l.LogLevelf(LogLevelWarn, msg, args...)
}

func (l *prefixLogger) Errorf(msg string, args ...interface{}) {
	l.LogLevelf(LogLevelError, msg, args...)
}
