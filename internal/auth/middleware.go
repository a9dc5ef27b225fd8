package auth

import (
	"context"
	"net/http"

	"github.com/sakif/inkwell/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. With a plain string key, ANY
// package that knows the string could read or shadow the value. A
// package-private type means only this package can create the key, so only
// this package can write session values into a context.
type contextKey string

const sessionKey contextKey = "session"

// The gate recognises three procedure classes, checked strictly in order:
//
//	public        — no middleware; anyone may call
//	authenticated — RequireAuth; 401 without a valid session
//	publisher     — RequireAuth + RequirePublisher; 401 without a session,
//	                403 when the session's role isn't PUBLISHER
//
// Gate failures are terminal: the wrapped handler never runs, so no partial
// execution or side effects happen before the check.

// RequireAuth enforces authentication on protected routes.
//
// It reads the session token from the "token" HttpOnly cookie, validates
// it, and stores the identity snapshot in the request context. If the token
// is missing or invalid it returns 401 Unauthorized and stops the chain.
//
// COOKIE-BASED TOKEN STORAGE:
// The token lives in an HttpOnly cookie rather than localStorage or a
// header. HttpOnly means JavaScript cannot read it, which keeps XSS from
// stealing the session.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := extractSession(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthenticated","message":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePublisher enforces the publisher procedure class. It must be
// chained AFTER RequireAuth — authentication is checked first, role only
// once a session exists, so anonymous callers get 401 rather than 403.
func RequirePublisher() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, `{"error":"unauthenticated","message":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			if sess.Role != model.RolePublisher {
				http.Error(w, `{"error":"forbidden","message":"publisher access required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth extracts the session if a valid token is present, but does
// NOT block the request if it's missing or invalid.
//
// Use this on public routes like the feed where anonymous users can read
// but logged-in users might see additional data. Handlers check for the
// session via SessionFromContext — ("", false) means anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, err := extractSession(r, tokens); err == nil && sess.ID != "" {
				ctx := context.WithValue(r.Context(), sessionKey, sess)
				r = r.WithContext(ctx)
			}
			// Always continue — no 401 even if no token
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext retrieves the authenticated identity snapshot from the
// request context.
//
// Returns (zero, false) if the request is anonymous.
func SessionFromContext(ctx context.Context) (SessionUser, bool) {
	sess, ok := ctx.Value(sessionKey).(SessionUser)
	return sess, ok && sess.ID != ""
}

// extractSession reads the token cookie and validates it.
// Private helper shared by RequireAuth and OptionalAuth.
func extractSession(r *http.Request, tokens *TokenService) (SessionUser, error) {
	cookie, err := r.Cookie("token")
	if err != nil {
		// http.ErrNoCookie means the cookie isn't present — just anonymous
		return SessionUser{}, err
	}

	return tokens.Validate(cookie.Value)
}
