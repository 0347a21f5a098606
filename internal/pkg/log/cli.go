package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCliLogger new production zapLogger.
func NewCliLogger(stdout io.Writer, stderr io.Writer, logFile *File, verbose bool) Logger {
	var cores []zapcore.Core

	// Log to file
	if logFile != nil {
		cores = append(cores, fileCore(logFile))
	}

	// Log to stdout
	cores = append(cores, stdoutCore(stdout, verbose))

	// Log to stderr
	cores = append(cores, stderrCore(stderr))

	// Create zapLogger
	return loggerFromZap(zap.New(zapcore.NewTee(cores...)))
}

// stdoutCore writes debug (if verbose) and info messages as plain text.
func stdoutCore(stdout io.Writer, verbose bool) zapcore.Core {
	minLevel := InfoLevel
	if verbose {
		minLevel = DebugLevel
	}

	encoder := zapcore.EncoderConfig{
		MessageKey:  "message",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeLevel: nil, // level is not logged to console
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoder),
		zapcore.AddSync(stdout),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= minLevel && l < WarnLevel
		}),
	)
}

// stderrCore writes warnings and errors as plain text.
func stderrCore(stderr io.Writer) zapcore.Core {
	encoder := zapcore.EncoderConfig{
		MessageKey:  "message",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeLevel: nil,
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoder),
		zapcore.AddSync(stderr),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= WarnLevel
		}),
	)
}

// fileCore writes all messages to the log file as JSON lines.
func fileCore(logFile *File) zapcore.Core {
	encoder := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoder),
		zapcore.AddSync(logFile.File()),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return true
		}),
	)
}
