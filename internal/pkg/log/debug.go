package log

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// debugLogger implements the DebugLogger interface, logs are stored in memory.
// Read methods consume the buffer, so repeated reads return new messages only.
type debugLogger struct {
	lock    *sync.Mutex
	prefix  string
	entries *[]entry
}

type entry struct {
	level   zapcore.Level
	message string
}

func NewDebugLogger() DebugLogger {
	entries := make([]entry, 0)
	return &debugLogger{lock: &sync.Mutex{}, entries: &entries}
}

func (l *debugLogger) AddPrefix(prefix string) Logger {
	clone := *l
	clone.prefix += prefix
	return &clone
}

func (l *debugLogger) log(level zapcore.Level, message string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	*l.entries = append(*l.entries, entry{level: level, message: l.prefix + message})
}

func (l *debugLogger) Debug(args ...any) {
	l.log(DebugLevel, fmt.Sprint(args...))
}

func (l *debugLogger) Info(args ...any) {
	l.log(InfoLevel, fmt.Sprint(args...))
}

func (l *debugLogger) Warn(args ...any) {
	l.log(WarnLevel, fmt.Sprint(args...))
}

func (l *debugLogger) Error(args ...any) {
	l.log(ErrorLevel, fmt.Sprint(args...))
}

func (l *debugLogger) Debugf(template string, args ...any) {
	l.log(DebugLevel, fmt.Sprintf(template, args...))
}

func (l *debugLogger) Infof(template string, args ...any) {
	l.log(InfoLevel, fmt.Sprintf(template, args...))
}

func (l *debugLogger) Warnf(template string, args ...any) {
	l.log(WarnLevel, fmt.Sprintf(template, args...))
}

func (l *debugLogger) Errorf(template string, args ...any) {
	l.log(ErrorLevel, fmt.Sprintf(template, args...))
}

func (l *debugLogger) Sync() error {
	return nil
}

func (l *debugLogger) Truncate() {
	l.lock.Lock()
	defer l.lock.Unlock()
	*l.entries = (*l.entries)[:0]
}

func (l *debugLogger) AllMessages() string {
	return l.messages(func(e entry) bool { return true })
}

func (l *debugLogger) DebugMessages() string {
	return l.messages(func(e entry) bool { return e.level == DebugLevel })
}

func (l *debugLogger) InfoMessages() string {
	return l.messages(func(e entry) bool { return e.level == InfoLevel })
}

func (l *debugLogger) WarnMessages() string {
	return l.messages(func(e entry) bool { return e.level == WarnLevel })
}

func (l *debugLogger) WarnAndErrorMessages() string {
	return l.messages(func(e entry) bool { return e.level >= WarnLevel })
}

func (l *debugLogger) ErrorMessages() string {
	return l.messages(func(e entry) bool { return e.level == ErrorLevel })
}

// messages matching the filter, the buffer is consumed.
func (l *debugLogger) messages(filter func(entry) bool) string {
	l.lock.Lock()
	defer l.lock.Unlock()
	var out strings.Builder
	for _, e := range *l.entries {
		if filter(e) {
			out.WriteString(strings.ToUpper(e.level.String()))
			out.WriteString("  ")
			out.WriteString(e.message)
			out.WriteString("\n")
		}
	}
	*l.entries = (*l.entries)[:0]
	return out.String()
}

func (l *debugLogger) DebugWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: DebugLevel}
}

func (l *debugLogger) InfoWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: InfoLevel}
}

func (l *debugLogger) WarnWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: WarnLevel}
}

func (l *debugLogger) ErrorWriter() *LevelWriter {
	return &LevelWriter{logger: l, level: ErrorLevel}
}
