package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Markers classify failures. Wrap tags an error with one of them so callers
// can branch with errors.Is without parsing messages.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap formats "<marker>: stage: operation: message[: err]". Empty
// segments are skipped and a nil marker becomes ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	where := describe(stage, operation, message)
	if err == nil {
		return fmt.Errorf("%w: %s", marker, where)
	}
	return fmt.Errorf("%w: %s: %w", marker, where, err)
}

// FailureKind is the short label stored with a failed export run.
func FailureKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range failureKinds {
		for _, target := range k.targets {
			if errors.Is(err, target) {
				return k.label
			}
		}
	}
	return "failed"
}

// Order matters: cancellation wins over any marker it was wrapped with.
var failureKinds = []struct {
	label   string
	targets []error
}{
	{"canceled", []error{context.Canceled}},
	{"timeout", []error{ErrTimeout, context.DeadlineExceeded}},
	{"external_tool", []error{ErrExternalTool}},
	{"invalid", []error{ErrValidation, ErrConfiguration}},
	{"not_found", []error{ErrNotFound}},
}

func describe(segments ...string) string {
	kept := segments[:0]
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return "service failure"
	}
	return strings.Join(kept, ": ")
}
