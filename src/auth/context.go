package auth

import (
	"context"
)

type contextKey string

const (
	SourceKey        contextKey = "source"
	AuthenticatedKey contextKey = "authenticated"
)

// WithSource records the origin identifier declared by the caller.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

func GetSourceFromContext(ctx context.Context) (string, bool) {
	source, ok := ctx.Value(SourceKey).(string)
	return source, ok && source != ""
}

// WithAuthenticated marks the request as carrying a verified intake token.
func WithAuthenticated(ctx context.Context) context.Context {
	return context.WithValue(ctx, AuthenticatedKey, true)
}

func IsAuthenticated(ctx context.Context) bool {
	ok, _ := ctx.Value(AuthenticatedKey).(bool)
	return ok
}
