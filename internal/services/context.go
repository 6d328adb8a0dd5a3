package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	stageKey   contextKey = "stage"
	articleKey contextKey = "article"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithArticle annotates context with the audio file name of the article being processed.
func WithArticle(ctx context.Context, fileName string) context.Context {
	if fileName == "" {
		return ctx
	}
	return context.WithValue(ctx, articleKey, fileName)
}

// ArticleFromContext returns the article file name if present.
func ArticleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(articleKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
