// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the access level a user has chosen during onboarding.
//
// WHY A NAMED STRING TYPE?
// A plain string would accept any value ("admin", "banana", ...). A named
// type plus constants gives us a closed set to validate against, and the
// string representation stores cleanly in SQLite and serializes cleanly to
// JSON without a lookup table.
type Role string

const (
	// RoleReader is the default role. Readers browse the feed, like posts
	// and keep bookmarks. Every new account starts as a reader until the
	// onboarding step confirms a choice.
	RoleReader Role = "READER"

	// RolePublisher unlocks post creation, the publisher dashboard and
	// analytics.
	RolePublisher Role = "PUBLISHER"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleReader || r == RolePublisher
}

// User represents an account on the platform.
//
// An account can be created two ways: classic registration (name, email,
// password) or a first Google sign-in (auto-provisioned, no password).
// Both end up in the same row — a local account that later signs in with
// Google silently gains OAuth as a second method, and an OAuth account can
// later set a password.
//
// WHY PasswordHash string (not *string)?
// An empty string means "no password set" — credential sign-in is
// unavailable for this account. Using the zero value instead of a nullable
// pointer keeps the struct simple to work with; HasPassword() makes the
// intent explicit at call sites.
//
// Onboarded is false until the user explicitly picks a role. While it is
// false, Role holds the READER default but must not be treated as a
// confirmed choice — role-gated areas send the user to role selection first.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"` // unique
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"`
	PasswordHash string    `json:"-"         db:"password_hash"` // never serialized
	Role         Role      `json:"role"      db:"role"`
	Onboarded    bool      `json:"onboarded" db:"onboarded"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether credential sign-in is available for this user.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Account links a User to an external identity provider (e.g. "google").
// One row per (user, provider) pair, written the first time that provider
// vouches for the user's email. The profile view derives its "linked
// providers" list from these rows.
type Account struct {
	ID        string    `json:"id"       db:"id"`
	UserID    string    `json:"userId"   db:"user_id"`
	Provider  string    `json:"provider" db:"provider"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
