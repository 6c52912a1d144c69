// Package notifications publishes export results to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers can notify unconditionally. Delivery failures are returned to the
// caller, which logs them without failing the export.
package notifications
