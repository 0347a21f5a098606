package log

import (
	"fmt"

	"go.uber.org/zap"
)

// zapLogger is default implementation of the Logger interface.
// It is wrapped zap.SugaredLogger.
type zapLogger struct {
	sugared *zap.SugaredLogger
	prefix  string
}

func loggerFromZap(l *zap.Logger) *zapLogger {
	return &zapLogger{sugared: l.Sugar()}
}

func (l *zapLogger) AddPrefix(prefix string) Logger {
	clone := *l
	clone.prefix += prefix
	return &clone
}

func (l *zapLogger) Debug(args ...any) {
	l.sugared.Debug(l.prefix + fmt.Sprint(args...))
}

func (l *zapLogger) Info(args ...any) {
	l.sugared.Info(l.prefix + fmt.Sprint(args...))
}

func (l *zapLogger) Warn(args ...any) {
	l.sugared.Warn(l.prefix + fmt.Sprint(args...))
}

func (l *zapLogger) Error(args ...any) {
	l.sugared.Error(l.prefix + fmt.Sprint(args...))
}

func (l *zapLogger) Debugf(template string, args ...any) {
	l.sugared.Debugf(l.prefix+template, args...)
}

func (l *zapLogger) Infof(template string, args ...any) {
	l.sugared.Infof(l.prefix+template, args...)
}

func (l *zapLogger) Warnf(template string, args ...any) {
	l.sugared.Warnf(l.prefix+template, args...)
}

func (l *zapLogger) Errorf(template string, args ...any) {
	l.sugared.Errorf(l.prefix+template, args...)
}

func (l *zapLogger) Sync() error {
	return l.sugared.Sync()
}

func (l *zapLogger) DebugWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: DebugLevel}
}

func (l *zapLogger) InfoWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: InfoLevel}
}

func (l *zapLogger) WarnWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: WarnLevel}
}

func (l *zapLogger) ErrorWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: ErrorLevel}
}
