package auth

import (
	"context"

	"github.com/user/taskman-go/session"
)

// contextKey is a private type for context keys so no other package can
// collide with them.
type contextKey string

const principalContextKey contextKey = "principal"

// WithPrincipal returns a child context carrying the principal.
func WithPrincipal(ctx context.Context, p *session.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext extracts the principal attached by the session
// middleware. The second return value is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (*session.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*session.Principal)
	return p, ok
}
