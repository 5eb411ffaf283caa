// Package auth authenticates API callers. A caller is identified by a bearer
// access token issued by TokenIssuer or, failing that, by a Redis-backed
// session cookie set at login.
package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const principalKey contextKey = "principal"

// ErrUnauthenticated is returned when no Principal exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrUnauthenticated = errors.New("authentication required")

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   int64
	Username string
}

// PrincipalFromCtx extracts the authenticated Principal from the request context.
// Returns ErrUnauthenticated if none is set (unauthenticated request).
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == 0 {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// WithPrincipal returns a new context with the given Principal attached.
// Used by authentication middleware after validating a token or session.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
