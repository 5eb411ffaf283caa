package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
)

// SessionName is the cookie name of the login session.
const SessionName = "inventory_session"

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

// RequireAuth is a chi middleware that enforces authentication.
//
// A request carrying "Authorization: Bearer <token>" is authenticated by the
// access token alone. Otherwise the session cookie is consulted. Either way
// the Principal is injected into the request context and the username is
// recorded on the request scope for the access log. Anything else gets 401.
//
// After this middleware, handlers can safely call auth.PrincipalFromCtx(r.Context()).
func RequireAuth(tokens *TokenIssuer, store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := authenticate(r, tokens, store, log)
			if !ok {
				unauthorized(w)
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			logger.ScopeFromCtx(ctx).SetUser(p.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, tokens *TokenIssuer, store sessions.Store, log logger.Logger) (Principal, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokens == nil {
			log.WarnContext(r.Context(), "unsupported authorization header")
			return Principal{}, false
		}
		p, err := tokens.ParseAccess(strings.TrimSpace(token))
		if err != nil {
			log.WarnContext(r.Context(), "invalid bearer token", "error", err)
			return Principal{}, false
		}
		return p, true
	}

	if store == nil {
		return Principal{}, false
	}
	session, err := store.Get(r, SessionName)
	if err != nil {
		log.WarnContext(r.Context(), "invalid session cookie", "error", err)
		return Principal{}, false
	}
	userID, ok := session.Values[sessionUserIDKey].(int64)
	if !ok || userID == 0 {
		return Principal{}, false
	}
	username, _ := session.Values[sessionUsernameKey].(string)
	return Principal{UserID: userID, Username: username}, true
}

func unauthorized(w http.ResponseWriter) {
	httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", ErrUnauthenticated.Error())
}

// StartSession stores p in the login session and writes the session cookie.
func StartSession(w http.ResponseWriter, r *http.Request, store sessions.Store, p Principal) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		// A stale or undecodable cookie still yields a usable fresh session.
		session, err = store.New(r, SessionName)
		if err != nil {
			return err
		}
	}
	session.Values[sessionUserIDKey] = p.UserID
	session.Values[sessionUsernameKey] = p.Username
	return session.Save(r, w)
}
