package reqid

import (
    "context"
    "log/slog"
)

type key struct{}

// With attaches a request ID to the context.
func With(ctx context.Context, id string) context.Context {
    if ctx == nil {
        ctx = context.Background()
    }
    return context.WithValue(ctx, key{}, id)
}

// From returns the request ID carried by ctx, if any.
func From(ctx context.Context) (string, bool) {
    if ctx == nil {
        return "", false
    }
    s, ok := ctx.Value(key{}).(string)
    if !ok || s == "" {
        return "", false
    }
    return s, true
}

// Attr renders the request ID as a slog attribute for access logs. With no
// ID in ctx it returns an empty group, which slog drops silently.
func Attr(ctx context.Context) slog.Attr {
    if id, ok := From(ctx); ok {
        return slog.String("request_id", id)
    }
    return slog.Group("")
}
