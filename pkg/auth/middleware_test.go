package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"

	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/logger"
)

// newTestStore returns a gorilla CookieStore (no Redis required) for unit tests.
// In production the RedisStore is used; the sessions.Store interface is identical.
func newTestStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

// newTestLogger creates a logger that discards output.
func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

// requestWithSession builds an *http.Request that carries a session cookie
// written by StartSession for p.
func requestWithSession(t *testing.T, store sessions.Store, p Principal) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/login/", nil)
	if err := StartSession(w, r, store, p); err != nil {
		t.Fatalf("start session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/items/1/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func mustNotCall(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
}

func capture(got *Principal, user *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = PrincipalFromCtx(r.Context())
		*user = logger.ScopeFromCtx(r.Context()).User()
		w.WriteHeader(http.StatusOK)
	})
}

// withScope mimics the logger middleware that runs before RequireAuth.
func withScope(r *http.Request) *http.Request {
	ctx, _ := logger.WithRequestScope(r.Context())
	return r.WithContext(ctx)
}

func TestRequireAuth_ValidBearerToken(t *testing.T) {
	issuer := newTestIssuer()
	want := Principal{UserID: 5, Username: "alice"}
	token, _ := issuer.IssueAccess(want)

	var got Principal
	var user string
	r := withScope(httptest.NewRequest(http.MethodGet, "/api/items/1/", nil))
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	RequireAuth(issuer, newTestStore(), newTestLogger())(capture(&got, &user)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != want {
		t.Fatalf("expected %+v in context, got %+v", want, got)
	}
	if user != "alice" {
		t.Fatalf("expected request scope user alice, got %q", user)
	}
}

func TestRequireAuth_ValidSession(t *testing.T) {
	store := newTestStore()
	want := Principal{UserID: 9, Username: "bob"}

	var got Principal
	var user string
	r := withScope(requestWithSession(t, store, want))
	w := httptest.NewRecorder()
	RequireAuth(newTestIssuer(), store, newTestLogger())(capture(&got, &user)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != want {
		t.Fatalf("expected %+v in context, got %+v", want, got)
	}
	if user != "bob" {
		t.Fatalf("expected request scope user bob, got %q", user)
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	issuer := newTestIssuer()
	pair, _ := issuer.Issue(Principal{UserID: 1, Username: "carol"})

	tests := []struct {
		name   string
		header string
	}{
		{"no credentials", ""},
		{"garbage bearer", "Bearer nope"},
		{"refresh token as bearer", "Bearer " + pair.Refresh},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/items/1/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			RequireAuth(issuer, newTestStore(), newTestLogger())(mustNotCall(t)).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequireAuth_SessionMissingUser(t *testing.T) {
	store := newTestStore()

	writeReq := httptest.NewRequest(http.MethodPost, "/api/login/", nil)
	w1 := httptest.NewRecorder()
	session, _ := store.Get(writeReq, SessionName)
	// intentionally no user values
	_ = session.Save(writeReq, w1)

	r := httptest.NewRequest(http.MethodGet, "/api/items/1/", nil)
	for _, c := range w1.Result().Cookies() {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	RequireAuth(newTestIssuer(), store, newTestLogger())(mustNotCall(t)).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_NilStoreRejectsCookieless(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/items/1/", nil)
	w := httptest.NewRecorder()
	RequireAuth(newTestIssuer(), nil, newTestLogger())(mustNotCall(t)).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_WithoutScope(t *testing.T) {
	issuer := newTestIssuer()
	token, _ := issuer.IssueAccess(Principal{UserID: 3, Username: "dave"})

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})
	r := httptest.NewRequest(http.MethodGet, "/api/items/1/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	RequireAuth(issuer, nil, newTestLogger())(next).ServeHTTP(httptest.NewRecorder(), r)

	if !reached {
		t.Fatal("expected handler to run without a request scope")
	}
}
