// Package observability wires structured logging and request tracing.
package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// NewLogger builds a JSON zap logger using Cloud Logging field names. An empty
// or unknown level falls back to info.
func NewLogger(level string) (*zap.Logger, error) {
	atom := zap.NewAtomicLevel()
	if err := atom.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil || strings.TrimSpace(level) == "" {
		_ = atom.UnmarshalText([]byte(defaultLogLevel))
	}

	cfg := zap.Config{
		Level:             atom,
		Encoding:          "json",
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	return cfg.Build()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "message",
		TimeKey:       "timestamp",
		LevelKey:      "severity",
		NameKey:       "logger",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
	}
}
