package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// compile-time check that *DB implements repository.PostRepository
var _ repository.PostRepository = (*DB)(nil)

// feedItemSelect joins each post with its author and like count — the
// shape every listing returns. COUNT over the LEFT JOIN gives 0 for posts
// nobody liked yet.
const feedItemSelect = `
	SELECT p.id, p.author_id, p.title, p.content, p.image_url, p.published,
	       p.created_at, p.updated_at,
	       u.name, u.avatar_url,
	       COUNT(l.id)
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN likes l ON l.post_id = p.id`

// CreatePost inserts a new post.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, title, content, image_url, published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Content,
		post.ImageURL,
		post.Published,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetPostByID retrieves a single post with its author and like count.
func (db *DB) GetPostByID(ctx context.Context, id string) (*model.FeedItem, error) {
	row := db.conn.QueryRowContext(ctx,
		feedItemSelect+` WHERE p.id = ? GROUP BY p.id`, id)

	item, err := scanFeedItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return item, nil
}

// ListFeed returns up to Limit+1 published posts, newest first, starting
// strictly after the cursor row.
//
// ORDERING:
// Posts order by id DESC, not created_at. xid embeds the creation
// timestamp in its leading bytes, so id order IS creation order — with a
// unique tiebreaker built in, which keyset pagination needs for a total
// order. Comparing ids also sidesteps comparing DATETIME text, which is
// not reliably ordered across sub-second values.
//
// SEARCH:
// LIKE is case-insensitive for ASCII in SQLite by default, which covers
// the case-insensitive substring contract without a COLLATE clause.
func (db *DB) ListFeed(ctx context.Context, opts repository.FeedOptions) ([]model.FeedItem, error) {
	query := feedItemSelect + ` WHERE p.published = 1`
	args := make([]any, 0, 4)

	if opts.Search != "" {
		query += ` AND (p.title LIKE ? OR p.content LIKE ?)`
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern)
	}
	if opts.Cursor != "" {
		query += ` AND p.id < ?`
		args = append(args, opts.Cursor)
	}

	query += ` GROUP BY p.id ORDER BY p.id DESC LIMIT ?`
	args = append(args, opts.Limit+1)

	return db.queryFeedItems(ctx, query, args...)
}

// ListByAuthor returns all of one author's posts, newest first, including
// unpublished drafts. Used by the publisher dashboard, never by the feed.
func (db *DB) ListByAuthor(ctx context.Context, authorID string) ([]model.FeedItem, error) {
	return db.queryFeedItems(ctx,
		feedItemSelect+` WHERE p.author_id = ? GROUP BY p.id ORDER BY p.id DESC`,
		authorID,
	)
}

// UpdatePost persists the mutable post fields, conditional on ownership.
//
// The WHERE clause carries both id and author_id: the existence check and
// the ownership check happen inside the one UPDATE statement, so there is
// no read-then-write window, and zero affected rows collapses "no such
// post" and "not your post" into a single NotFoundOrForbidden.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post, authorID string) error {
	post.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, content = ?, image_url = ?, published = ?, updated_at = ?
		 WHERE id = ? AND author_id = ?`,
		post.Title,
		post.Content,
		post.ImageURL,
		post.Published,
		post.UpdatedAt,
		post.ID,
		authorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundOrForbidden("post")
	}

	return nil
}

// DeletePost removes a post under the same conditional-ownership rule as Update.
func (db *DB) DeletePost(ctx context.Context, id, authorID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ? AND author_id = ?`,
		id, authorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundOrForbidden("post")
	}

	return nil
}

// CountByAuthor counts all of an author's posts.
func (db *DB) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE author_id = ?`, authorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting posts for author %s: %w", authorID, err)
	}
	return count, nil
}

// CreatedTimesByAuthor returns the creation times of the author's posts
// since the cutoff. Grouping into days happens in the service layer, where
// day boundaries are a Go time calculation instead of SQL date arithmetic.
func (db *DB) CreatedTimesByAuthor(ctx context.Context, authorID string, since time.Time) ([]time.Time, error) {
	return db.queryTimes(ctx,
		`SELECT created_at FROM posts WHERE author_id = ? AND created_at >= ?`,
		authorID, since,
	)
}

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type scanner interface {
	Scan(dest ...any) error
}

func scanFeedItem(s scanner) (*model.FeedItem, error) {
	var item model.FeedItem
	err := s.Scan(
		&item.ID,
		&item.AuthorID,
		&item.Title,
		&item.Content,
		&item.ImageURL,
		&item.Published,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Author.Name,
		&item.Author.AvatarURL,
		&item.LikeCount,
	)
	if err != nil {
		return nil, err
	}
	item.Author.ID = item.AuthorID
	return &item, nil
}

func (db *DB) queryFeedItems(ctx context.Context, query string, args ...any) ([]model.FeedItem, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	var items []model.FeedItem
	for rows.Next() {
		item, err := scanFeedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return items, nil
}

func (db *DB) queryTimes(ctx context.Context, query string, args ...any) ([]time.Time, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing timestamps: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("sqlite: scanning timestamp row: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating timestamps: %w", err)
	}

	return times, nil
}
