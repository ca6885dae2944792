// Package logger builds the process-wide zap logger. The result also replaces
// zap's globals, which is what zap.L() in response and middleware resolves to.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options mirrors the log section of the service config.
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New builds a logger from opts and installs it as the zap global.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(defaultString(opts.Level, "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(defaultString(opts.Format, "console")) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableCaller = !opts.EnableCaller
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	output := defaultString(opts.Output, "stdout")
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	zap.ReplaceGlobals(l)
	return l, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
