package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/pagination"
	"github.com/sakif/inkwell/internal/repository"
)

// EngagementService handles likes and bookmarks: idempotent toggles, status
// lookups and the bookmark reading list.
type EngagementService struct {
	likes         repository.LikeRepository
	bookmarks     repository.BookmarkRepository
	posts         repository.PostRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

// NewEngagementService creates an EngagementService.
func NewEngagementService(
	likes repository.LikeRepository,
	bookmarks repository.BookmarkRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	logger *slog.Logger,
) *EngagementService {
	return &EngagementService{
		likes:         likes,
		bookmarks:     bookmarks,
		posts:         posts,
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

// EngagementStatus is one post's like/bookmark state for the caller.
type EngagementStatus struct {
	Liked      bool `json:"liked"`
	Bookmarked bool `json:"bookmarked"`
}

// ToggleLike flips the caller's like on a post and reports the new state.
//
// The toggle resolves at the storage layer: Delete removes an existing like,
// and if there was none, Insert adds one — with the UNIQUE constraint
// absorbing a racing duplicate. Two concurrent toggles from the same user
// therefore converge instead of erroring.
//
// Turning a like ON notifies the post's author, unless the liker is the
// author. A notification failure is logged, not returned: the like itself
// committed, and the toggle's result should say so.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return false, err
	}

	deleted, err := s.likes.Delete(ctx, userID, postID)
	if err != nil {
		return false, fmt.Errorf("service/engagement: removing like: %w", err)
	}
	if deleted {
		return false, nil
	}

	if _, err := s.likes.Insert(ctx, userID, postID); err != nil {
		return false, fmt.Errorf("service/engagement: adding like: %w", err)
	}

	if post.AuthorID != userID {
		s.notifyLike(ctx, userID, post)
	}

	return true, nil
}

func (s *EngagementService) notifyLike(ctx context.Context, likerID string, post *model.FeedItem) {
	liker, err := s.users.GetUserByID(ctx, likerID)
	if err != nil {
		s.logger.Error("looking up liker for notification",
			slog.String("userID", likerID),
			slog.Any("error", err),
		)
		return
	}

	n := &model.Notification{
		UserID:  post.AuthorID,
		Message: fmt.Sprintf("%s liked your post %q", liker.Name, post.Title),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.logger.Error("creating like notification",
			slog.String("postID", post.ID),
			slog.Any("error", err),
		)
	}
}

// ToggleBookmark flips the caller's bookmark on a post and reports the new
// state. Same convergence rule as ToggleLike; bookmarks are private, so no
// notification.
func (s *EngagementService) ToggleBookmark(ctx context.Context, userID, postID string) (bool, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return false, err
	}

	deleted, err := s.bookmarks.Delete(ctx, userID, postID)
	if err != nil {
		return false, fmt.Errorf("service/engagement: removing bookmark: %w", err)
	}
	if deleted {
		return false, nil
	}

	if _, err := s.bookmarks.Insert(ctx, userID, postID); err != nil {
		return false, fmt.Errorf("service/engagement: adding bookmark: %w", err)
	}

	return true, nil
}

// Status reports the caller's like/bookmark state for one post.
func (s *EngagementService) Status(ctx context.Context, userID, postID string) (EngagementStatus, error) {
	liked, err := s.likes.Has(ctx, userID, postID)
	if err != nil {
		return EngagementStatus{}, fmt.Errorf("service/engagement: checking like: %w", err)
	}
	bookmarked, err := s.bookmarks.Has(ctx, userID, postID)
	if err != nil {
		return EngagementStatus{}, fmt.Errorf("service/engagement: checking bookmark: %w", err)
	}
	return EngagementStatus{Liked: liked, Bookmarked: bookmarked}, nil
}

// BulkStatus reports like/bookmark state for a whole page of posts in two
// queries, so feed rendering doesn't fan out per post. Every requested ID
// appears in the result, false when there is no row.
func (s *EngagementService) BulkStatus(ctx context.Context, userID string, postIDs []string) (map[string]EngagementStatus, error) {
	statuses := make(map[string]EngagementStatus, len(postIDs))
	if len(postIDs) == 0 {
		return statuses, nil
	}

	liked, err := s.likes.HasMany(ctx, userID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("service/engagement: bulk like status: %w", err)
	}
	bookmarked, err := s.bookmarks.HasMany(ctx, userID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("service/engagement: bulk bookmark status: %w", err)
	}

	for _, id := range postIDs {
		statuses[id] = EngagementStatus{Liked: liked[id], Bookmarked: bookmarked[id]}
	}
	return statuses, nil
}

// LikeCount returns a post's like tally. Missing posts read as zero — the
// count endpoint is public and shouldn't probe existence.
func (s *EngagementService) LikeCount(ctx context.Context, postID string) (int, error) {
	count, err := s.likes.Count(ctx, postID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return 0, fmt.Errorf("service/engagement: counting likes: %w", err)
	}
	return count, nil
}

// Bookmarks returns one page of the caller's reading list, most recently
// bookmarked first. The cursor tracks the bookmark row, not the post, so a
// post bookmarked long ago but written recently pages where the bookmark
// falls.
func (s *EngagementService) Bookmarks(ctx context.Context, userID string, limit int, cursor string) (pagination.Page[model.BookmarkedPost], error) {
	limit = pagination.ClampLimit(limit)

	rows, err := s.bookmarks.ListForUser(ctx, userID, repository.ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return pagination.Page[model.BookmarkedPost]{}, fmt.Errorf("service/engagement: listing bookmarks: %w", err)
	}

	return pagination.Trim(rows, limit, func(b model.BookmarkedPost) string {
		return b.BookmarkID
	}), nil
}
