// Package logging builds the zap logger shared by the pipeline components.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names
const (
	FieldSource   = "source"
	FieldURL      = "url"
	FieldHost     = "host"
	FieldAttempt  = "attempt"
	FieldStatus   = "status"
	FieldBytes    = "bytes"
	FieldTokens   = "tokens"
	FieldCount    = "count"
	FieldDuration = "duration_ms"
	FieldBackend  = "backend"
)

// Verbosity levels for the repeated -v flag
const (
	VerbosityQuiet = 0 // warnings and errors only
	VerbosityInfo  = 1 // -v: progress per source
	VerbosityDebug = 2 // -vv: cache, robots, retries
)

// VerbosityToLevel maps the -v count to a zap level
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a logger writing to stderr. JSON output uses the production
// encoder; otherwise a compact console encoder without caller or stack.
func New(verbosity int, jsonOutput bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(VerbosityToLevel(verbosity))

	var encoder zapcore.Encoder
	if jsonOutput {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		cfg.StacktraceKey = ""
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	return zap.New(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
}

// OrNop returns l, or a no-op logger when l is nil
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
