package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

// AuthService handles registration, credential sign-in, OAuth identity
// resolution and account management.
type AuthService struct {
	users     repository.UserRepository
	accounts  repository.AccountRepository
	passwords *auth.PasswordService
	sessions  *SessionService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	passwords *auth.PasswordService,
	sessions *SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		accounts:  accounts,
		passwords: passwords,
		sessions:  sessions,
		logger:    logger,
	}
}

// AuthResult bundles the resolved user with a freshly signed session token.
// Every identity-establishing path (register, credential sign-in, OAuth
// callback) returns one.
type AuthResult struct {
	User  *model.User
	Token string
}

// Profile is the account view returned to the signed-in user themselves.
// HasPassword tells the client whether a password change must supply the
// current password; Providers lists linked OAuth identities.
type Profile struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	AvatarURL   string     `json:"avatarUrl"`
	Role        model.Role `json:"role"`
	Onboarded   bool       `json:"onboarded"`
	HasPassword bool       `json:"hasPassword"`
	Providers   []string   `json:"providers"`
}

// Register creates a password-based account and signs the user in.
//
// Registration collects the role up front, so a registered user is
// onboarded immediately — only OAuth-first users go through the separate
// role-selection step.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role model.Role) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if len(name) < minNameLength {
		return nil, apperror.ValidationFailed("name", fmt.Sprintf("name must be at least %d characters", minNameLength))
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("role must be %s or %s", model.RoleReader, model.RolePublisher))
	}

	// Early duplicate check for a clean error; the UNIQUE constraint in
	// CreateUser catches the race where two registrations slip past it.
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.EmailInUse()
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email availability: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Onboarded:    true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.sessions.Establish(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// SignInWithCredentials verifies an email/password pair and issues a session.
//
// All three failure modes — unknown email, OAuth-only account with no
// password hash, wrong password — return the same generic
// InvalidCredentials, so responses never reveal which emails have accounts.
func (s *AuthService) SignInWithCredentials(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user for sign-in: %w", err)
	}

	if !user.HasPassword() {
		return nil, apperror.InvalidCredentials()
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.sessions.Establish(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// ResolveOAuth maps an external identity to a local user, creating one on
// first sight, and issues a session.
//
// Matching is BY EMAIL, not by provider subject: an OAuth sign-in with the
// email of an existing password account signs into that account (the
// provider verified the address). First-time OAuth users are created
// un-onboarded with the default role and no password hash, and get routed
// to role selection on their next navigation.
func (s *AuthService) ResolveOAuth(ctx context.Context, identity *auth.GoogleUser, provider string) (*AuthResult, error) {
	email := normalizeEmail(identity.Email)

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account: the provider now also vouches for it.
	case errors.Is(err, apperror.ErrNotFound):
		name := strings.TrimSpace(identity.Name)
		if name == "" {
			// Providers may omit the display name; the email is the one
			// identity we always have.
			name = email
		}
		user = &model.User{
			Name:      name,
			Email:     email,
			AvatarURL: identity.Picture,
			Role:      model.RoleReader,
			Onboarded: false,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user created via oauth",
			slog.String("userID", user.ID),
			slog.String("provider", provider),
		)
	default:
		return nil, fmt.Errorf("service/auth: resolving oauth identity: %w", err)
	}

	if err := s.accounts.Link(ctx, user.ID, provider); err != nil {
		return nil, fmt.Errorf("service/auth: linking %s account for user %s: %w", provider, user.ID, err)
	}

	token, err := s.sessions.Establish(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// SetRole records the onboarding role choice.
func (s *AuthService) SetRole(ctx context.Context, userID string, role model.Role) error {
	if !role.Valid() {
		return apperror.ValidationFailed("role", fmt.Sprintf("role must be %s or %s", model.RoleReader, model.RolePublisher))
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info("user onboarded",
		slog.String("userID", userID),
		slog.String("role", string(role)),
	)
	return nil
}

// GetProfile returns the signed-in user's own account view.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	providers, err := s.accounts.Providers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: listing providers for user %s: %w", userID, err)
	}

	return &Profile{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AvatarURL:   user.AvatarURL,
		Role:        user.Role,
		Onboarded:   user.Onboarded,
		HasPassword: user.HasPassword(),
		Providers:   providers,
	}, nil
}

// UpdateName changes the display name. The caller is expected to follow up
// with a session refresh so the token picks up the new value.
func (s *AuthService) UpdateName(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength {
		return apperror.ValidationFailed("name", fmt.Sprintf("name must be at least %d characters", minNameLength))
	}
	return s.users.UpdateName(ctx, userID, name)
}

// UpdateAvatar changes the avatar URL; empty clears it.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	return s.users.UpdateAvatar(ctx, userID, avatarURL)
}

// ChangePassword sets a new password.
//
// Accounts that already have a password must prove knowledge of it.
// OAuth-only accounts have no password yet, so the current-password check
// is skipped — this is how they add a password for the first time.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperror.ValidationFailed("newPassword", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.HasPassword() {
		if currentPassword == "" {
			return apperror.CurrentPasswordRequired()
		}
		if err := s.passwords.Verify(user.PasswordHash, currentPassword); err != nil {
			return apperror.CurrentPasswordIncorrect()
		}
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("newPassword", "password must be 72 bytes or fewer")
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", slog.String("userID", userID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	// mail.ParseAddress accepts "Name <addr>" forms; requiring the parsed
	// address to round-trip to the input keeps it to a bare address.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.ValidationFailed("email", "invalid email address")
	}
	return nil
}
