package logging

import "context"

type requestCtxKey struct{}
type collectionCtxKey struct{}
type loggerCtxKey struct{}

// WithRequestID attaches a request/trace correlation ID to ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext extracts the request ID attached by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// WithCollection attaches the collection name an operation is scoped to,
// so every log line inside a Search/Refresh/Index call carries it without
// each call site repeating zap.String("collection", name).
func WithCollection(ctx context.Context, collection string) context.Context {
	return context.WithValue(ctx, collectionCtxKey{}, collection)
}

// CollectionFromContext extracts the collection attached by WithCollection.
func CollectionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(collectionCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// WithLogger stores logger in ctx for retrieval by FromContext.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves the logger stored by WithLogger, or a no-op logger
// if none was stored.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
