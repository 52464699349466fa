package auth

import "context"

type ctxKey string

const identityCtxKey = ctxKey("identity")

// Identity is the validated caller attached to the request context by the
// authentication checkpoint.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// WithIdentity stores the identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// IdentityFromContext extracts the identity attached by RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}
