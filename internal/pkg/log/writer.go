package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

type LevelWriter struct {
	logger baseLogger
	level  zapcore.Level
}

// Write messages with the defined level to the logger.
func (w *LevelWriter) Write(p []byte) (n int, err error) {
	lines := strings.TrimRight(string(p), "\n")
	for _, line := range strings.Split(lines, "\n") {
		msg := strings.TrimRight(line, "\n")
		switch w.level {
		case DebugLevel:
			w.logger.Debug(msg)
		case InfoLevel:
			w.logger.Info(msg)
		case WarnLevel:
			w.logger.Warn(msg)
		case ErrorLevel:
			w.logger.Error(msg)
		default:
			w.logger.Info(msg)
		}
	}
	return len(p), nil
}

func (w *LevelWriter) WriteString(s string) {
	if _, err := w.Write([]byte(s)); err != nil {
		panic(fmt.Errorf("cannot write: %w", err))
	}
}

func (w *LevelWriter) Writef(format string, a ...any) {
	w.WriteString(fmt.Sprintf(format, a...))
}
