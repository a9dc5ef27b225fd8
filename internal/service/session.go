// Package service — session-state reconciliation.
//
// The session token is a cache over mutable user state. The database is
// the source of truth; the token is refreshed only at explicit trigger
// points, never per-request:
//
//   - Identity-establishing event (credential sign-in, OAuth resolution):
//     every field is populated fresh from the resolved user record. This is
//     the ONLY path that sets the token's id.
//   - Explicit update trigger (the client signals "my state changed" after
//     a mutation): client-supplied partial fields are applied first for
//     instant feedback, then the user row is unconditionally re-fetched and
//     storage-owned fields overwrite whatever the client sent.
//
// Between triggers the token is reused unchanged, so storage changes stay
// invisible until the next refresh or the next sign-in. Every server-side
// mutation of role/onboarded/name/avatar therefore pairs with a client-side
// refresh call, or the session serves stale authorization data until the
// next login.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// SessionService owns the authority rules for the session token.
type SessionService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Session is the externally visible session object.
//
// Materialization from the token snapshot is a pure projection — all five
// fields copied into the user sub-object, no side effects, no storage read.
type Session struct {
	User auth.SessionUser `json:"user"`
}

// SessionPatch carries the optional client-supplied fields of an explicit
// update trigger. Nil means "not supplied". Only name and avatar may be
// patched — role and onboarded are storage-owned and have no patch fields
// at all, so stale client values for them cannot even be expressed.
type SessionPatch struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// Snapshot maps a user record to the token's identity snapshot.
func Snapshot(user *model.User) auth.SessionUser {
	return auth.SessionUser{
		ID:        user.ID,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
		Onboarded: user.Onboarded,
	}
}

// Materialize projects a token snapshot into the session object.
func Materialize(sess auth.SessionUser) Session {
	return Session{User: sess}
}

// Establish issues a token for an identity-establishing event. The caller
// has just resolved or created the user record; every token field comes
// from it.
func (s *SessionService) Establish(user *model.User) (string, error) {
	token, err := s.tokens.Generate(Snapshot(user))
	if err != nil {
		return "", fmt.Errorf("service/session: establishing session for user %s: %w", user.ID, err)
	}
	return token, nil
}

// Refresh handles the explicit update trigger.
//
// The client patch is applied to a copy of the current snapshot first —
// that's the fast path giving instant UI feedback. Then the user row is
// re-fetched by the token's EXISTING id (a refresh never changes identity)
// and name, avatar, role and onboarded are overwritten from storage. If two
// mutations raced, the later database state wins; patched values for
// storage-owned fields never survive the overwrite.
//
// Returns the new snapshot and a freshly signed token carrying it.
func (s *SessionService) Refresh(ctx context.Context, current auth.SessionUser, patch SessionPatch) (auth.SessionUser, string, error) {
	next := current

	// Fast path: fold in what the client claims changed.
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		next.AvatarURL = *patch.AvatarURL
	}

	// Authoritative path: storage overwrites, unconditionally.
	user, err := s.users.GetUserByID(ctx, current.ID)
	if err != nil {
		// The token references a user that no longer exists — an internal
		// consistency failure, fatal to this request.
		return auth.SessionUser{}, "", fmt.Errorf("service/session: refreshing session for user %s: %w", current.ID, err)
	}
	next.Name = user.Name
	next.AvatarURL = user.AvatarURL
	next.Role = user.Role
	next.Onboarded = user.Onboarded

	token, err := s.tokens.Generate(next)
	if err != nil {
		return auth.SessionUser{}, "", fmt.Errorf("service/session: re-signing session for user %s: %w", current.ID, err)
	}

	s.logger.Debug("session refreshed",
		slog.String("userID", current.ID),
		slog.String("role", string(next.Role)),
		slog.Bool("onboarded", next.Onboarded),
	)

	return next, token, nil
}

// Destination is where the page layer should send a visitor.
type Destination int

const (
	DestSignIn Destination = iota
	DestChooseRole
	DestReaderHome
	DestPublisherHome
)

func (d Destination) String() string {
	switch d {
	case DestChooseRole:
		return "choose-role"
	case DestReaderHome:
		return "reader-home"
	case DestPublisherHome:
		return "publisher-home"
	default:
		return "sign-in"
	}
}

// RouteFor is the page-level three-way branch: no session → sign-in;
// session but not onboarded → role selection; otherwise the role's home
// area. Because the token can be stale, onboarded and role are re-derived
// from storage here rather than trusted from the snapshot — this guards
// area entry points, which is worth a read per navigation.
func (s *SessionService) RouteFor(ctx context.Context, sess auth.SessionUser, authenticated bool) (Destination, error) {
	if !authenticated {
		return DestSignIn, nil
	}

	user, err := s.users.GetUserByID(ctx, sess.ID)
	if err != nil {
		return DestSignIn, fmt.Errorf("service/session: routing user %s: %w", sess.ID, err)
	}

	switch {
	case !user.Onboarded:
		return DestChooseRole, nil
	case user.Role == model.RolePublisher:
		return DestPublisherHome, nil
	default:
		return DestReaderHome, nil
	}
}
