package observability

import (
	"io"
	"log/slog"
)

// Logger wraps slog.Logger with credential redaction.
type Logger struct {
	*slog.Logger
	redactor *Redactor
}

// LoggerConfig contains configuration for the logger.
type LoggerConfig struct {
	Level      slog.Level
	Output     io.Writer
	JSONFormat bool
}

// NewLogger creates a logger with redaction support.
func NewLogger(cfg LoggerConfig, redactor *Redactor) *Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	return &Logger{
		Logger:   slog.New(handler),
		redactor: redactor,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(args ...any) *Logger {
	return &Logger{
		Logger:   l.Logger.With(args...),
		redactor: l.redactor,
	}
}

// RedactedInfo logs at INFO level with redacted message and args.
func (l *Logger) RedactedInfo(msg string, args ...any) {
	l.Logger.Info(l.redact(msg), l.redactArgs(args)...)
}

// RedactedWarn logs at WARN level with redacted message and args.
func (l *Logger) RedactedWarn(msg string, args ...any) {
	l.Logger.Warn(l.redact(msg), l.redactArgs(args)...)
}

// RedactedError logs at ERROR level with redacted message and args.
func (l *Logger) RedactedError(msg string, args ...any) {
	l.Logger.Error(l.redact(msg), l.redactArgs(args)...)
}

func (l *Logger) redact(s string) string {
	if l.redactor == nil {
		return s
	}
	return l.redactor.Redact(s)
}

func (l *Logger) redactArgs(args []any) []any {
	if l.redactor == nil {
		return args
	}
	result := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			result[i] = l.redactor.Redact(v)
		case error:
			result[i] = l.redactor.Redact(v.Error())
		default:
			result[i] = arg
		}
	}
	return result
}
