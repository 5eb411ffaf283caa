package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
)

// Token kinds. The kind is the securecookie name, so it is bound into the
// HMAC and a token of one kind never decodes as the other.
const (
	TokenKindAccess  = "access_token"
	TokenKindRefresh = "refresh_token"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenPair is returned on login.
type TokenPair struct {
	Access  string
	Refresh string
}

type tokenClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"usr"`
}

// TokenIssuer issues and verifies stateless bearer tokens.
//
// Tokens are securecookie values: JSON claims, AES-encrypted and
// HMAC-signed, with the issue timestamp checked against the TTL on decode.
type TokenIssuer struct {
	access     *securecookie.SecureCookie
	refresh    *securecookie.SecureCookie
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer creates a TokenIssuer.
//
// Parameters:
//   - signingKey: 32 or 64 bytes for HMAC authentication
//   - encryptionKey: 16, 24, or 32 bytes for AES encryption
//   - accessTTL, refreshTTL: token lifetimes, rounded up to whole seconds
func NewTokenIssuer(signingKey, encryptionKey []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		access:     newCodec(signingKey, encryptionKey, accessTTL),
		refresh:    newCodec(signingKey, encryptionKey, refreshTTL),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func newCodec(signingKey, encryptionKey []byte, ttl time.Duration) *securecookie.SecureCookie {
	seconds := int((ttl + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return securecookie.New(signingKey, encryptionKey).
		SetSerializer(securecookie.JSONEncoder{}).
		MaxAge(seconds)
}

// AccessTTL returns the access token lifetime.
func (t *TokenIssuer) AccessTTL() time.Duration { return t.accessTTL }

// Issue returns a fresh access and refresh token for p.
func (t *TokenIssuer) Issue(p Principal) (TokenPair, error) {
	access, err := t.IssueAccess(p)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.refresh.Encode(TokenKindRefresh, claimsOf(p))
	if err != nil {
		return TokenPair{}, fmt.Errorf("encode refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess returns a fresh access token for p.
func (t *TokenIssuer) IssueAccess(p Principal) (string, error) {
	token, err := t.access.Encode(TokenKindAccess, claimsOf(p))
	if err != nil {
		return "", fmt.Errorf("encode access token: %w", err)
	}
	return token, nil
}

// ParseAccess verifies an access token and returns its Principal.
func (t *TokenIssuer) ParseAccess(token string) (Principal, error) {
	return decode(t.access, TokenKindAccess, token)
}

// ParseRefresh verifies a refresh token and returns its Principal.
func (t *TokenIssuer) ParseRefresh(token string) (Principal, error) {
	return decode(t.refresh, TokenKindRefresh, token)
}

func decode(codec *securecookie.SecureCookie, kind, token string) (Principal, error) {
	var c tokenClaims
	if err := codec.Decode(kind, token, &c); err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.UserID == 0 {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: c.UserID, Username: c.Username}, nil
}

func claimsOf(p Principal) tokenClaims {
	return tokenClaims{UserID: p.UserID, Username: p.Username}
}
