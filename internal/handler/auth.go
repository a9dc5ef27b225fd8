package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/service"
)

// AuthHandler manages sign-up, both sign-in paths (credentials and Google
// OAuth), session lifecycle and account settings.
//
// DEPENDENCY CHAIN:
//   - google   *auth.GoogleProvider   → performs the OAuth code exchange
//   - authSvc  *service.AuthService   → resolves identities, manages accounts
//   - sessions *service.SessionService → refreshes the token snapshot
type AuthHandler struct {
	google   *auth.GoogleProvider
	authSvc  *service.AuthService
	sessions *service.SessionService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	google *auth.GoogleProvider,
	authSvc *service.AuthService,
	sessions *service.SessionService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google:   google,
		authSvc:  authSvc,
		sessions: sessions,
		logger:   logger,
	}
}

// setSessionCookie stores the signed token in the HttpOnly session cookie.
//
// HttpOnly = JavaScript cannot read this cookie (XSS protection).
// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
// Secure should be true in production (HTTPS only); false here for local dev.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.DefaultSessionDuration / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Uncomment in production (requires HTTPS)
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleRegister creates a password account and signs the new user in.
//
// HTTP: POST /api/auth/register
// Body: {"name": "...", "email": "...", "password": "...", "role": "READER"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string     `json:"name"`
		Email    string     `json:"email"`
		Password string     `json:"password"`
		Role     model.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authSvc.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, service.Materialize(service.Snapshot(result.User)))
}

// HandleSignIn verifies email+password and issues a session.
//
// HTTP: POST /api/auth/signin
//
// Failures come back as a single generic invalid_credentials regardless of
// whether the email exists — see apperror.InvalidCredentials.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authSvc.SignInWithCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, service.Materialize(service.Snapshot(result.User)))
}

// HandleGoogleLogin redirects the browser to Google's authorization page.
//
// HTTP: GET /auth/google/login
//
// CSRF PROTECTION VIA STATE:
// A random state string goes into a short-lived cookie before the redirect;
// the callback verifies Google echoed the same value. This proves the
// callback belongs to a flow this server started.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth login flow.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a Google user profile
//  3. Resolve the identity: find-or-create the user by email, link provider
//  4. Issue the session token cookie
//  5. Redirect into the app
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch",
			slog.String("expected", stateCookie.Value),
			slog.String("got", r.URL.Query().Get("state")),
		)
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Clear the state cookie — it's single-use
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// Google sends error= when the user denied authorization
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: Google exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.authSvc.ResolveOAuth(r.Context(), gUser, "google")
	if err != nil {
		h.logger.Error("auth callback: identity resolution failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, result.Token)

	// First-time OAuth users haven't chosen a role yet; send them straight
	// to onboarding instead of a home page that would bounce them there.
	if !result.User.Onboarded {
		http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /api/auth/logout
//
// Since sessions are stateless, "logout" just means deleting the client-side
// cookie. The token remains technically valid until expiry, but without the
// cookie the browser can't send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleSetRole records the onboarding role choice and returns a refreshed
// session so the new role takes effect immediately.
//
// HTTP: POST /api/auth/role
// Body: {"role": "PUBLISHER"}
func (h *AuthHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req struct {
		Role model.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authSvc.SetRole(r.Context(), sess.ID, req.Role); err != nil {
		writeError(w, err)
		return
	}

	// Role and onboarded live in the token; without an immediate refresh
	// the very next request would still carry the pre-onboarding snapshot.
	next, token, err := h.sessions.Refresh(r.Context(), sess, service.SessionPatch{})
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, service.Materialize(next))
}

// HandleGetProfile returns the signed-in user's own account view, including
// whether a password is set and which OAuth providers are linked.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	profile, err := h.authSvc.GetProfile(r.Context(), sess.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateName changes the display name.
//
// HTTP: PUT /api/me
// Body: {"name": "..."}
//
// The response does NOT carry a new token: the client follows up with
// POST /api/session/refresh (passing the new name as its patch), which is
// the one sanctioned path for re-syncing token state after a mutation.
func (h *AuthHandler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authSvc.UpdateName(r.Context(), sess.ID, req.Name); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}

// HandleUpdateAvatar changes (or clears) the avatar URL.
//
// HTTP: PUT /api/me/avatar
// Body: {"avatarUrl": "..."} — empty string clears the avatar.
func (h *AuthHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authSvc.UpdateAvatar(r.Context(), sess.ID, req.AvatarURL); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": req.AvatarURL})
}

// HandleChangePassword sets a new password. Accounts that already have one
// must supply the current password; OAuth-only accounts set theirs here for
// the first time.
//
// HTTP: PUT /api/me/password
// Body: {"currentPassword": "...", "newPassword": "..."}
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authSvc.ChangePassword(r.Context(), sess.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// HandleGetSession materializes the session object from the token snapshot.
//
// HTTP: GET /api/session
//
// Pure projection: no storage read, no side effects. What the token says is
// what comes back — if the client suspects staleness, it refreshes.
func (h *AuthHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, service.Materialize(sess))
}

// HandleRefreshSession is the explicit update trigger: the client signals
// its user state changed and optionally supplies the new name/avatar for
// instant feedback. Storage-owned fields are re-read and win.
//
// HTTP: POST /api/session/refresh
// Body: {"name": "...", "avatarUrl": "..."} — both optional.
func (h *AuthHandler) HandleRefreshSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	// A bare trigger with no patch is valid: "something changed, re-read".
	var patch service.SessionPatch
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, err)
			return
		}
	}

	next, token, err := h.sessions.Refresh(r.Context(), sess, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, service.Materialize(next))
}

// HandleRoute returns where the client should land: sign-in, role
// selection, or the role's home area. Works for anonymous callers too
// (OptionalAuth), who always get sign-in.
//
// HTTP: GET /api/session/route
func (h *AuthHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())

	dest, err := h.sessions.RouteFor(r.Context(), sess, ok)
	if err != nil {
		// A dangling session routes to sign-in rather than erroring; the
		// stale cookie gets replaced on the next successful login.
		h.logger.Warn("route: session user not found", slog.String("userID", sess.ID))
		clearSessionCookie(w)
	}

	writeJSON(w, http.StatusOK, map[string]string{"destination": dest.String()})
}
