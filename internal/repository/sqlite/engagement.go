package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// Likes and bookmarks share their storage shape: a join row per
// (user, post) pair, UNIQUE on the pair, toggled on and off. The unexported
// helpers below take the table name; the exported methods pin it.

// LikeStore and BookmarkStore expose the like and bookmark halves of *DB
// as distinct interface values. The two repositories have identical method
// sets, so *DB cannot implement both directly — the wrapper types pick the
// table.
type LikeStore struct{ db *DB }
type BookmarkStore struct{ db *DB }

// Likes returns the LikeRepository view of the database.
func (db *DB) Likes() *LikeStore { return &LikeStore{db: db} }

// Bookmarks returns the BookmarkRepository view of the database.
func (db *DB) Bookmarks() *BookmarkStore { return &BookmarkStore{db: db} }

// compile-time interface checks
var (
	_ repository.LikeRepository     = (*LikeStore)(nil)
	_ repository.BookmarkRepository = (*BookmarkStore)(nil)
)

func (s *LikeStore) Insert(ctx context.Context, userID, postID string) (bool, error) {
	return s.db.insertPair(ctx, "likes", userID, postID)
}

func (s *LikeStore) Delete(ctx context.Context, userID, postID string) (bool, error) {
	return s.db.deletePair(ctx, "likes", userID, postID)
}

func (s *LikeStore) Has(ctx context.Context, userID, postID string) (bool, error) {
	return s.db.hasPair(ctx, "likes", userID, postID)
}

func (s *LikeStore) HasMany(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return s.db.hasPairs(ctx, "likes", userID, postIDs)
}

// Count returns the number of likes on a post. Public — it backs the like
// counter shown to anonymous readers.
func (s *LikeStore) Count(ctx context.Context, postID string) (int, error) {
	var count int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes for post %s: %w", postID, err)
	}
	return count, nil
}

// CountForAuthor totals likes across every post the author owns.
func (s *LikeStore) CountForAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM likes l
		 JOIN posts p ON p.id = l.post_id
		 WHERE p.author_id = ?`,
		authorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes for author %s: %w", authorID, err)
	}
	return count, nil
}

// TimesForAuthor returns creation times of likes on the author's posts
// since the cutoff, for the analytics daily series.
func (s *LikeStore) TimesForAuthor(ctx context.Context, authorID string, since time.Time) ([]time.Time, error) {
	return s.db.queryTimes(ctx,
		`SELECT l.created_at
		 FROM likes l
		 JOIN posts p ON p.id = l.post_id
		 WHERE p.author_id = ? AND l.created_at >= ?`,
		authorID, since,
	)
}

func (s *BookmarkStore) Insert(ctx context.Context, userID, postID string) (bool, error) {
	return s.db.insertPair(ctx, "bookmarks", userID, postID)
}

func (s *BookmarkStore) Delete(ctx context.Context, userID, postID string) (bool, error) {
	return s.db.deletePair(ctx, "bookmarks", userID, postID)
}

func (s *BookmarkStore) Has(ctx context.Context, userID, postID string) (bool, error) {
	return s.db.hasPair(ctx, "bookmarks", userID, postID)
}

func (s *BookmarkStore) HasMany(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return s.db.hasPairs(ctx, "bookmarks", userID, postIDs)
}

// ListForUser pages through the user's bookmarked posts, most recently
// bookmarked first. The bookmark row is what gets paginated — its xid is
// the cursor — while each returned item carries the post with author and
// like count.
func (s *BookmarkStore) ListForUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.BookmarkedPost, error) {
	query := `
		SELECT b.id,
		       p.id, p.author_id, p.title, p.content, p.image_url, p.published,
		       p.created_at, p.updated_at,
		       u.name, u.avatar_url,
		       COUNT(l.id)
		FROM bookmarks b
		JOIN posts p ON p.id = b.post_id
		JOIN users u ON u.id = p.author_id
		LEFT JOIN likes l ON l.post_id = p.id
		WHERE b.user_id = ?`
	args := []any{userID}

	if opts.Cursor != "" {
		query += ` AND b.id < ?`
		args = append(args, opts.Cursor)
	}

	query += ` GROUP BY b.id ORDER BY b.id DESC LIMIT ?`
	args = append(args, opts.Limit+1)

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bookmarks for user %s: %w", userID, err)
	}
	defer rows.Close()

	var items []model.BookmarkedPost
	for rows.Next() {
		var bp model.BookmarkedPost
		err := rows.Scan(
			&bp.BookmarkID,
			&bp.ID,
			&bp.AuthorID,
			&bp.Title,
			&bp.Content,
			&bp.ImageURL,
			&bp.Published,
			&bp.CreatedAt,
			&bp.UpdatedAt,
			&bp.Author.Name,
			&bp.Author.AvatarURL,
			&bp.LikeCount,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning bookmark row: %w", err)
		}
		bp.Author.ID = bp.AuthorID
		items = append(items, bp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bookmarks: %w", err)
	}

	return items, nil
}

// insertPair adds a (user, post) join row.
//
// INSERT OR IGNORE is the whole concurrency story for toggles: when a
// racing call (or a double-click) already inserted the pair, the UNIQUE
// constraint drops this insert silently, RowsAffected comes back 0 and the
// caller learns the row was already there. No error, no partial state.
func (db *DB) insertPair(ctx context.Context, table, userID, postID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+table+` (id, user_id, post_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		xid.New().String(), userID, postID, time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: inserting into %s: %w", table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// deletePair removes a (user, post) join row; false means it wasn't there.
func (db *DB) deletePair(ctx context.Context, table, userID, postID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = ? AND post_id = ?`,
		userID, postID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting from %s: %w", table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (db *DB) hasPair(ctx context.Context, table, userID, postID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE user_id = ? AND post_id = ?`,
		userID, postID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s: %w", table, err)
	}
	return count > 0, nil
}

// hasPairs answers the bulk status query in a single statement. The result
// map has an entry for every requested post ID, false included, so callers
// can index it without existence checks.
func (db *DB) hasPairs(ctx context.Context, table, userID string, postIDs []string) (map[string]bool, error) {
	statuses := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		statuses[id] = false
	}
	if len(postIDs) == 0 {
		return statuses, nil
	}

	placeholders := strings.Repeat("?,", len(postIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(postIDs)+1)
	args = append(args, userID)
	for _, id := range postIDs {
		args = append(args, id)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT post_id FROM `+table+` WHERE user_id = ? AND post_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: bulk checking %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", table, err)
		}
		statuses[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s: %w", table, err)
	}

	return statuses, nil
}
