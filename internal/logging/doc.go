// Package logging builds the slog loggers used across twisty.
//
// Two formats are supported: a compact console line for terminals and JSON
// with short keys for log shippers. Components tag their loggers with
// NewComponentLogger, and WithContext adds run_id, job and stage fields from a
// context populated by the services package. WarnWithContext and
// ErrorWithContext enforce the event_type/error_hint/impact fields on
// operator-facing problems.
package logging
