package logging

import (
	"context"
	"log/slog"
	"time"
)

// Common attribute keys shared across packages so log lines stay greppable.
const (
	FieldComponent = "component"
	FieldItemID    = "item_id"
	FieldStage     = "stage"
	FieldRequestID = "request_id"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldDuration  = "duration"
	FieldProgress  = "progress"
)

// String mirrors slog.String for callers that only import this package.
func String(key, value string) slog.Attr { return slog.String(key, value) }

// Int mirrors slog.Int.
func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

// Int64 mirrors slog.Int64.
func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

// Float64 mirrors slog.Float64.
func Float64(key string, value float64) slog.Attr { return slog.Float64(key, value) }

// Bool mirrors slog.Bool.
func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

// Duration mirrors slog.Duration.
func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

// Error wraps an error value under the conventional "error" key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Args converts attrs into the variadic any form slog methods accept.
func Args(attrs ...slog.Attr) []any {
	out := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Equal(slog.Attr{}) {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// NewComponentLogger labels a logger with the component attribute. A nil base
// logger yields a nop logger so callers never have to nil-check.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if component == "" {
		return logger
	}
	return logger.With(String(FieldComponent, component))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NoopHandler drops all records.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler        { return NoopHandler{} }
func (NoopHandler) WithGroup(string) slog.Handler             { return NoopHandler{} }
