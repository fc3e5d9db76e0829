package auth

import "context"

type contextKey struct{}

// Identity is the caller resolved from a session token.
type Identity struct {
	UserID string
	// Method is "session" or "jwt".
	Method string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// UserID returns the caller's id, or "" when the request is anonymous.
func UserID(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.UserID
}
