package logger

import (
	"context"
	"sync"
	"time"
)

const anonymousUser = "anonymous"

type scopeKey struct{}

// RequestScope carries per-request logging state. It is created by Middleware
// and travels in the request context, so handlers and auth middleware further
// down the chain can annotate the request without touching shared state.
type RequestScope struct {
	start time.Time

	mu   sync.Mutex
	user string
}

// WithRequestScope returns a context carrying a fresh RequestScope started now.
func WithRequestScope(ctx context.Context) (context.Context, *RequestScope) {
	scope := &RequestScope{start: time.Now()}
	return context.WithValue(ctx, scopeKey{}, scope), scope
}

// ScopeFromCtx returns the RequestScope attached by Middleware, or nil.
func ScopeFromCtx(ctx context.Context) *RequestScope {
	scope, _ := ctx.Value(scopeKey{}).(*RequestScope)
	return scope
}

// SetUser records the authenticated username. Safe on a nil scope.
func (s *RequestScope) SetUser(username string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.user = username
	s.mu.Unlock()
}

// User returns the recorded username or "anonymous".
func (s *RequestScope) User() string {
	if s == nil {
		return anonymousUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == "" {
		return anonymousUser
	}
	return s.user
}

// Elapsed reports the time since the scope was created.
func (s *RequestScope) Elapsed() time.Duration {
	if s == nil {
		return 0
	}
	return time.Since(s.start)
}
