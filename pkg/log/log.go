package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger *Logger
	lock          sync.RWMutex
)

func init() {
	defaultLogger = New(os.Stdout, LogLevelDebug)
}

type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

func (level LogLevel) String() string {
	switch level {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	case LogLevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a log level string into a LogLevel.
// Valid log levels are: error, warn, info, debug, trace.
func ParseLogLevel(level string) (LogLevel, error) {
	switch level {
	case "error":
		return LogLevelError, nil
	case "warn":
		return LogLevelWarn, nil
	case "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	case "trace":
		return LogLevelTrace, nil
	default:
		return LogLevelError, fmt.Errorf("unknown log level: %s", level)
	}
}

func (level LogLevel) logrusLevel() logrus.Level {
	switch level {
	case LogLevelError:
		return logrus.ErrorLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelInfo:
		return logrus.InfoLevel
	case LogLevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// Logger is a leveled logger that writes one JSON object per line.
type Logger struct {
	entry *logrus.Entry
}

func New(out io.Writer, level LogLevel) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(level.logrusLevel())
	return &Logger{entry: logrus.NewEntry(l)}
}

// WithField returns a logger that adds key=value to every entry.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *Logger) Trace(format string, args ...interface{}) {
	l.entry.Tracef(format, args...)
}

// SetDefaultLogger replaces the logger used by the package-level functions.
func SetDefaultLogger(logger *Logger) {
	lock.Lock()
	defer lock.Unlock()
	defaultLogger = logger
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	lock.RLock()
	defer lock.RUnlock()
	return defaultLogger
}

func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}

func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

func Trace(format string, args ...interface{}) {
	Default().Trace(format, args...)
}
