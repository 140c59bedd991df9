package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/voting-service/internal/config"
)

// NewLogger builds the JSON logger shared by the API, the audit log and the
// stores. Every entry carries the service name, version and environment.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       level == zapcore.DebugLevel,
		DisableStacktrace: level != zapcore.DebugLevel,
		Encoding:          "json",
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	base, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return serviceLogger(base, cfg), nil
}

func parseLevel(raw string) zapcore.Level {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(raw)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "message",
		LevelKey:      "level",
		TimeKey:       "ts",
		NameKey:       "logger",
		StacktraceKey: "stacktrace",
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeName:    zapcore.FullNameEncoder,
	}
}

// serviceLogger names base after the service and attaches its identity fields.
func serviceLogger(base *zap.Logger, cfg config.LoggerConfig) *zap.Logger {
	logger := base
	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}

	var fields []zap.Field
	if cfg.Name != "" {
		fields = append(fields, zap.String("service", cfg.Name))
	}
	if cfg.Version != "" {
		fields = append(fields, zap.String("version", cfg.Version))
	}
	if cfg.Env != "" {
		fields = append(fields, zap.String("env", cfg.Env))
	}
	return logger.With(fields...)
}
