package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, name, email, avatar_url, password_hash, role, onboarded, created_at, updated_at`

// CreateUser inserts a new user.
//
// ID GENERATION WITH xid:
// xid generates 20-char, URL-safe, creation-time-sortable IDs (they start
// with a timestamp). That sortability matters here: listings order by ID
// descending and get newest-first order with a built-in unique tiebreaker.
//
// The UNIQUE constraint on email is the backstop against two racing
// registrations for the same address; callers normally check first, and
// the loser of a race gets apperror.EmailInUse from here.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleReader
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, avatar_url, password_hash, role, onboarded, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.AvatarURL,
		user.PasswordHash,
		user.Role,
		user.Onboarded,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return apperror.EmailInUse()
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by email.
// Returns apperror.ErrNotFound if no account has the email — callers on
// the sign-in path must translate that to the generic InvalidCredentials.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.Role,
		&u.Onboarded,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", arg, err)
	}

	return &u, nil
}

// SetRole records the onboarding choice: role and the onboarded flag are
// written together so there is no state where one changed without the other.
func (db *DB) SetRole(ctx context.Context, id string, role model.Role) error {
	return db.updateUser(ctx, id,
		`UPDATE users SET role = ?, onboarded = 1, updated_at = ? WHERE id = ?`,
		role, time.Now(), id)
}

func (db *DB) UpdateName(ctx context.Context, id, name string) error {
	return db.updateUser(ctx, id,
		`UPDATE users SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now(), id)
}

func (db *DB) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return db.updateUser(ctx, id,
		`UPDATE users SET avatar_url = ?, updated_at = ? WHERE id = ?`,
		avatarURL, time.Now(), id)
}

func (db *DB) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return db.updateUser(ctx, id,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now(), id)
}

// updateUser runs a single-row user UPDATE and translates "no row matched"
// into NotFound — a token referencing a since-deleted user surfaces here.
func (db *DB) updateUser(ctx context.Context, id, query string, args ...any) error {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
