package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/logger"
	appsvcs "github.com/ghuser/inventory/services/user/application/services"
	userdomain "github.com/ghuser/inventory/services/user/domain"
	"github.com/ghuser/inventory/services/user/domain/models"
)

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]models.User
	nextID int64
}

func (r *memUserRepo) Save(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return userdomain.ErrUsernameTaken
	}
	r.nextID++
	u.ID, u.CreatedAt = r.nextID, time.Now().UTC()
	r.users[u.Username] = *u
	return nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, userdomain.ErrUserNotFound
}

type testEnv struct {
	router http.Handler
	repo   *memUserRepo
	tokens *auth.TokenIssuer
	store  sessions.Store
	log    logger.Logger
}

func newTestEnv() *testEnv {
	log := logger.New(&config.Config{LogLevel: "error"})
	repo := &memUserRepo{users: make(map[string]models.User)}
	tokens := auth.NewTokenIssuer(
		[]byte("test-signing-key-must-be-32-byte"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
		5*time.Minute, 24*time.Hour,
	)
	store := sessions.NewCookieStore([]byte("test-session-key-must-be-32-byte"))
	svcs := &appsvcs.Services{User: appsvcs.NewUserService(repo, log)}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		mount(r, svcs, tokens, store, log)
	})
	return &testEnv{router: r, repo: repo, tokens: tokens, store: store, log: log}
}

func (e *testEnv) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestUserRoutes_Register(t *testing.T) {
	env := newTestEnv()

	w := env.post(t, "/api/register/", `{"username":"alice","password":"password123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}
	body := decode(t, w)
	if body["id"] != float64(1) || body["username"] != "alice" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, leaked := body["password"]; leaked {
		t.Fatal("password must not be echoed")
	}

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"duplicate username", `{"username":"alice","password":"password123"}`, "already_exists"},
		{"short password", `{"username":"bob","password":"short"}`, "invalid"},
		{"bad username characters", `{"username":"bob smith","password":"password123"}`, "invalid"},
		{"missing password", `{"username":"bob"}`, "invalid"},
		{"malformed json", `{`, "invalid_json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.post(t, "/api/register/", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body)
			}
			if got := decode(t, w)["code"]; got != tt.wantCode {
				t.Fatalf("expected code %q, got %v", tt.wantCode, got)
			}
		})
	}
}

func TestUserRoutes_Login(t *testing.T) {
	env := newTestEnv()
	env.post(t, "/api/register/", `{"username":"alice","password":"password123"}`)

	w := env.post(t, "/api/login/", `{"username":"alice","password":"password123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	body := decode(t, w)
	access, _ := body["access"].(string)
	if _, ok := body["refresh"].(string); !ok || access == "" {
		t.Fatalf("expected token pair, got %v", body)
	}

	p, err := env.tokens.ParseAccess(access)
	if err != nil || p.Username != "alice" || p.UserID != 1 {
		t.Fatalf("unexpected access token principal %+v, %v", p, err)
	}

	t.Run("session cookie authenticates", func(t *testing.T) {
		cookies := w.Result().Cookies()
		if len(cookies) == 0 {
			t.Fatal("expected a session cookie")
		}
		var got auth.Principal
		protected := auth.RequireAuth(env.tokens, env.store, env.log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = auth.PrincipalFromCtx(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || got.Username != "alice" {
			t.Fatalf("expected session auth as alice, got %d %+v", rec.Code, got)
		}
	})

	for _, tc := range []struct{ name, body string }{
		{"wrong password", `{"username":"alice","password":"wrong-password"}`},
		{"unknown user", `{"username":"nobody","password":"password123"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := env.post(t, "/api/login/", tc.body)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if got := decode(t, w)["code"]; got != "invalid_credentials" {
				t.Fatalf("expected invalid_credentials, got %v", got)
			}
		})
	}
}

func TestUserRoutes_RefreshToken(t *testing.T) {
	env := newTestEnv()
	env.post(t, "/api/register/", `{"username":"alice","password":"password123"}`)
	login := decode(t, env.post(t, "/api/login/", `{"username":"alice","password":"password123"}`))
	refresh, _ := login["refresh"].(string)
	access, _ := login["access"].(string)

	w := env.post(t, "/api/token/refresh/", `{"refresh":"`+refresh+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	newAccess, _ := decode(t, w)["access"].(string)
	if p, err := env.tokens.ParseAccess(newAccess); err != nil || p.Username != "alice" {
		t.Fatalf("unexpected refreshed principal %+v, %v", p, err)
	}

	t.Run("access token is not a refresh token", func(t *testing.T) {
		w := env.post(t, "/api/token/refresh/", `{"refresh":"`+access+`"}`)
		if w.Code != http.StatusUnauthorized || decode(t, w)["code"] != "invalid_token" {
			t.Fatalf("expected 401 invalid_token, got %d %s", w.Code, w.Body)
		}
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		orphan, err := env.tokens.Issue(auth.Principal{UserID: 42, Username: "ghost"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		w := env.post(t, "/api/token/refresh/", `{"refresh":"`+orphan.Refresh+`"}`)
		if w.Code != http.StatusUnauthorized || decode(t, w)["code"] != "invalid_token" {
			t.Fatalf("expected 401 invalid_token, got %d %s", w.Code, w.Body)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		w := env.post(t, "/api/token/refresh/", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
