package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	jobNameKey contextKey = "job"
	stageKey   contextKey = "stage"
)

// WithRunID annotates context with the export run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return withString(ctx, runIDKey, id)
}

// RunIDFromContext extracts the export run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, runIDKey)
}

// WithJobName annotates context with the human readable job name.
func WithJobName(ctx context.Context, name string) context.Context {
	return withString(ctx, jobNameKey, name)
}

// JobNameFromContext returns the job name if present.
func JobNameFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, jobNameKey)
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}

// Empty values are not stored so lookups report them as absent.
func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}
