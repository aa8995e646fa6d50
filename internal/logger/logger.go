package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	ERROR Level = iota
	WARN
	INFO
	DEBUG
)

func ParseLevel(lvl string) (Level, error) {
	switch strings.ToLower(lvl) {
	case "error":
		return ERROR, nil
	case "warn":
		return WARN, nil
	case "info":
		return INFO, nil
	case "debug":
		return DEBUG, nil
	}
	return INFO, fmt.Errorf("invalid log level: %s", lvl)
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case ERROR:
		return zapcore.ErrorLevel
	case WARN:
		return zapcore.WarnLevel
	case DEBUG:
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Logger is a leveled logger writing JSON lines to stderr.
type Logger struct {
	level Level
	sugar *zap.SugaredLogger
}

// New creates a new Logger.
func New(level Level) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level.zapLevel()),
	)
	return &Logger{level: level, sugar: zap.New(core).Sugar()}
}

// NewWithCore creates a Logger on top of an existing zap core.
func NewWithCore(level Level, core zapcore.Core) *Logger {
	return &Logger{level: level, sugar: zap.New(core).Sugar()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{level: ERROR, sugar: zap.NewNop().Sugar()}
}

// Named returns a child logger tagged with name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{level: l.level, sugar: l.sugar.Named(name)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// Errorf prints a formatted error message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.level >= ERROR {
		l.sugar.Errorf(format, v...)
	}
}

// Warnf prints a formatted warning message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level >= WARN {
		l.sugar.Warnf(format, v...)
	}
}

// Infof prints a formatted info message.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level >= INFO {
		l.sugar.Infof(format, v...)
	}
}

// Debugf prints a formatted debug message.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level >= DEBUG {
		l.sugar.Debugf(format, v...)
	}
}
