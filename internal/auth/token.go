// Package auth provides session tokens, password hashing and the Google
// OAuth flow for the publishing API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User signs in with email+password (POST /api/auth/signin) or via
//    Google (/auth/google/login → Google → /auth/google/callback)
// 2. The server resolves the user record and issues a signed session token
//    carrying a snapshot of {id, name, avatar, role, onboarded}
// 3. The token is stored in an HttpOnly cookie; on subsequent calls the
//    middleware validates it and puts the snapshot in the request context
// 4. The token is NOT re-derived on every request. The database is the
//    source of truth and the token is a cache with explicit refresh points:
//    after a mutation that changes role/onboarded/name/avatar the client
//    calls POST /api/session/refresh, which re-reads the user row and
//    issues a fresh token.
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store
// session data. Everything needed (the identity snapshot, expiry) is inside
// the signed token, and the signature ensures nobody can tamper with it
// without the secret key. The flip side of statelessness is staleness:
// storage changes are invisible to the token until the next refresh trigger
// or the next sign-in, which is why every mutation of token-carried fields
// must be paired with a refresh call.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/inkwell/internal/model"
)

// DefaultSessionDuration is how long an issued session token stays valid.
// There is no refresh-token rotation — after expiry the user signs in again.
const DefaultSessionDuration = 7 * 24 * time.Hour

// SessionUser is the identity snapshot carried inside the session token.
//
// AUTHORITY RULES:
// The only path that sets ID is an identity-establishing event (credential
// sign-in or OAuth resolution). Role, Onboarded, Name and AvatarURL are
// owned by storage — a refresh overwrites them from the user row, and any
// client-supplied optimistic values for them never survive that overwrite.
type SessionUser struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	AvatarURL string     `json:"avatarUrl"`
	Role      model.Role `json:"role"`
	Onboarded bool       `json:"onboarded"`
}

// TokenService handles session token creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations — keep it safe.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: SESSION_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the token payload: the identity snapshot plus the standard
// registered claims. The user ID lives in "sub" (Subject), the standard
// claim for identifying who the token belongs to; the remaining snapshot
// fields are custom claims.
type claims struct {
	Name      string     `json:"name"`
	AvatarURL string     `json:"avatarUrl"`
	Role      model.Role `json:"role"`
	Onboarded bool       `json:"onboarded"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given identity
// snapshot, valid for DefaultSessionDuration.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies. Fine for a single-server deployment.
func (s *TokenService) Generate(user SessionUser) (string, error) {
	return s.GenerateWithDuration(user, DefaultSessionDuration)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests and anywhere a non-default lifetime is needed.
func (s *TokenService) GenerateWithDuration(user SessionUser, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
		Onboarded: user.Onboarded,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "inkwell",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token string and returns the
// identity snapshot it carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches "inkwell" (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (SessionUser, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			// Reject tokens that aren't signed with HS256
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("inkwell"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionUser{}, fmt.Errorf("auth: token expired")
		}
		return SessionUser{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return SessionUser{}, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return SessionUser{}, fmt.Errorf("auth: token has no subject")
	}

	return SessionUser{
		ID:        c.Subject,
		Name:      c.Name,
		AvatarURL: c.AvatarURL,
		Role:      c.Role,
		Onboarded: c.Onboarded,
	}, nil
}
