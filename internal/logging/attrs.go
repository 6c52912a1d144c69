package logging

import (
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so callers can build fields without importing log/slog.
type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error records err under "error". A nil error is logged as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// WarnWithContext logs a warning that always carries event_type, error_hint and
// impact. Caller-supplied values win over the defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Warn(msg, withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"),
		String(FieldImpact, "operation completed with warnings"),
	)...)
}

// ErrorWithContext logs an error that always carries event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, "check logs for details"),
	)...)
}

func withDefaults(attrs []Attr, defaults ...Attr) []any {
	present := make(map[string]struct{}, len(attrs))
	args := make([]any, 0, len(attrs)+len(defaults))
	for _, a := range attrs {
		present[a.Key] = struct{}{}
		args = append(args, a)
	}
	for _, d := range defaults {
		if _, ok := present[d.Key]; !ok {
			args = append(args, d)
		}
	}
	return args
}
