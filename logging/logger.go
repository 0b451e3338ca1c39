// Package logging provides structured logging for the aigen backend.
//
// Output is teed to the console and a rotating log file. The console encoder
// is human-readable in development mode and JSON in production; the file
// always receives JSON for downstream processing.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured for the given environment.
//
// Parameters:
//   - isDevelopment: when true, uses colored console output with debug level.
//     When false, uses JSON output with info level.
//   - logFilePath: path to the rotating log file. Pass "" to log to the
//     console only (used by one-shot CLI commands).
//
// The caller owns the logger and should defer logger.Sync().
func NewLogger(isDevelopment bool, logFilePath string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if isDevelopment {
		level = zapcore.DebugLevel
	}

	var consoleEncoder zapcore.Encoder
	if isDevelopment {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}

	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), level)

	core := consoleCore
	if logFilePath != "" {
		fileEncoder := zapcore.NewJSONEncoder(NewEncoderConfig())
		fileCore := zapcore.NewCore(fileEncoder, NewFileWriter(logFilePath), level)
		core = zapcore.NewTee(consoleCore, fileCore)
	}

	return zap.New(core, zap.AddCaller()), nil
}

// NewTestLogger returns a no-op logger for use in tests.
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}
