// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage is the production implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/inkwell/internal/model"
)

// ListOptions drives a keyset-paginated fetch. Implementations return up to
// Limit+1 rows ordered newest-first, starting strictly after the row
// identified by Cursor (empty Cursor = from the top). The extra row is the
// caller's "has more" signal — see the pagination package.
type ListOptions struct {
	Limit  int
	Cursor string
}

// FeedOptions extends ListOptions with the feed's optional search filter
// (case-insensitive substring match on title or content).
type FeedOptions struct {
	ListOptions
	Search string
}

// DateCount is one day's tally in an analytics series.
type DateCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

type UserRepository interface {
	// CreateUser inserts a new user, assigning ID and timestamps.
	// A duplicate email surfaces as apperror.EmailInUse.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail returns apperror.ErrNotFound when no account has the email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// SetRole sets the role and marks the user onboarded in one write.
	SetRole(ctx context.Context, id string, role model.Role) error
	UpdateName(ctx context.Context, id, name string) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type AccountRepository interface {
	// Link records that the provider vouches for this user. Idempotent:
	// linking an already-linked (user, provider) pair is a no-op.
	Link(ctx context.Context, userID, provider string) error
	// Providers lists the provider names linked to the user.
	Providers(ctx context.Context, userID string) ([]string, error)
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	// GetPostByID returns the post with its author and like count.
	GetPostByID(ctx context.Context, id string) (*model.FeedItem, error)
	// ListFeed returns published posts, newest first, optionally filtered.
	ListFeed(ctx context.Context, opts FeedOptions) ([]model.FeedItem, error)
	// ListByAuthor returns all of one author's posts, newest first,
	// published or not.
	ListByAuthor(ctx context.Context, authorID string) ([]model.FeedItem, error)
	// UpdatePost persists title/content/image/published for the post, but only
	// when authorID owns it. A non-existent post and a post owned by
	// someone else are indistinguishable: both return
	// apperror.NotFoundOrForbidden. The ownership check is part of the
	// UPDATE's WHERE clause, not a separate read.
	UpdatePost(ctx context.Context, post *model.Post, authorID string) error
	// DeletePost removes the post under the same conditional-ownership rule.
	DeletePost(ctx context.Context, id, authorID string) error
	CountByAuthor(ctx context.Context, authorID string) (int, error)
	// CreatedTimesByAuthor returns the creation times of the author's
	// posts since the cutoff, for the publishing-frequency series.
	CreatedTimesByAuthor(ctx context.Context, authorID string, since time.Time) ([]time.Time, error)
}

type LikeRepository interface {
	// Insert adds the (user, post) like row. A row already present —
	// including one inserted by a racing call — is not an error: the
	// UNIQUE constraint violation is swallowed and inserted=false comes
	// back, so two racing toggles converge.
	Insert(ctx context.Context, userID, postID string) (inserted bool, err error)
	// Delete removes the like row; deleted=false when it wasn't there.
	Delete(ctx context.Context, userID, postID string) (deleted bool, err error)
	Has(ctx context.Context, userID, postID string) (bool, error)
	// HasMany reports like status for each of postIDs in one query.
	HasMany(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	Count(ctx context.Context, postID string) (int, error)
	// CountForAuthor totals likes across all of the author's posts.
	CountForAuthor(ctx context.Context, authorID string) (int, error)
	// TimesForAuthor returns creation times of likes on the author's
	// posts since the cutoff, for the daily-likes series.
	TimesForAuthor(ctx context.Context, authorID string, since time.Time) ([]time.Time, error)
}

type BookmarkRepository interface {
	Insert(ctx context.Context, userID, postID string) (inserted bool, err error)
	Delete(ctx context.Context, userID, postID string) (deleted bool, err error)
	Has(ctx context.Context, userID, postID string) (bool, error)
	HasMany(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	// ListForUser pages through the user's bookmarked posts, most recently
	// bookmarked first. The cursor is the bookmark row's ID (the bookmark,
	// not the post, is the paginated row).
	ListForUser(ctx context.Context, userID string, opts ListOptions) ([]model.BookmarkedPost, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	// ListRecent returns the newest notifications, capped at limit.
	ListRecent(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) error
}
