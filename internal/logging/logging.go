package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redactedValue = "***"

// redactKeys matches field keys whose values must never reach the log file.
var redactKeys = regexp.MustCompile(`(?i)token|secret|password|authorization|bearer|api_?key|credential`)

// New builds a zap logger that appends JSON lines to path at the given
// level ("debug", "info", "warn", "error"). The panel owns the terminal, so
// nothing is written to stdout or stderr.
func New(path, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Sampling = nil

	logger, err := cfg.Build(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return redactingCore{c}
	}))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Redact replaces the value of any field whose key looks like a credential.
func Redact(fields ...zap.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		if redactKeys.MatchString(f.Key) {
			out[i] = zap.String(f.Key, redactedValue)
			continue
		}
		out[i] = f
	}
	return out
}

// redactingCore applies Redact to every field before it reaches the encoder,
// including fields attached with With.
type redactingCore struct {
	zapcore.Core
}

func (c redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return redactingCore{c.Core.With(Redact(fields...))}
}

func (c redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, Redact(fields...))
}
