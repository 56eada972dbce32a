package services

import "context"

type contextKey int

const (
	jobIDKey contextKey = iota
	stageKey
	requestIDKey
)

// WithJobID attaches a queue job identifier to the context.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the job identifier, if present.
func JobIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(jobIDKey).(int64)
	return id, ok
}

// WithStage attaches the active pipeline stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext extracts the stage name, if present.
func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageKey).(string)
	return stage, ok && stage != ""
}

// WithRequestID attaches a correlation identifier for one job run.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}
