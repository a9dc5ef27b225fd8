package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/pagination"
	"github.com/sakif/inkwell/internal/repository"
)

// PostService handles post CRUD and the public feed.
type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

// PostInput carries the author-editable fields of a post.
type PostInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	Published bool   `json:"published"`
}

// PostPatch is a partial update; nil fields are left unchanged.
type PostPatch struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	ImageURL  *string `json:"imageUrl"`
	Published *bool   `json:"published"`
}

// Feed returns one page of published posts, newest first, optionally
// filtered by a case-insensitive substring search over title and content.
// The limit is clamped, then one extra row is fetched to decide whether a
// next page exists.
func (s *PostService) Feed(ctx context.Context, limit int, cursor, search string) (pagination.Page[model.FeedItem], error) {
	limit = pagination.ClampLimit(limit)

	items, err := s.posts.ListFeed(ctx, repository.FeedOptions{
		ListOptions: repository.ListOptions{Limit: limit, Cursor: cursor},
		Search:      strings.TrimSpace(search),
	})
	if err != nil {
		return pagination.Page[model.FeedItem]{}, fmt.Errorf("service/post: listing feed: %w", err)
	}

	return pagination.Trim(items, limit, func(item model.FeedItem) string {
		return item.ID
	}), nil
}

// Get returns a single post with author and like count. Unpublished drafts
// are readable only by their author — anyone else gets the same NotFound a
// missing post would produce.
func (s *PostService) Get(ctx context.Context, id string, viewerID string) (*model.FeedItem, error) {
	item, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Published && item.AuthorID != viewerID {
		return nil, apperror.NotFound("post", id)
	}
	return item, nil
}

// Create publishes (or drafts) a new post for the author.
func (s *PostService) Create(ctx context.Context, authorID string, input PostInput) (*model.Post, error) {
	if err := validatePostFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:  authorID,
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		ImageURL:  input.ImageURL,
		Published: input.Published,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("authorID", authorID),
		slog.Bool("published", post.Published),
	)

	return post, nil
}

// Update applies a partial edit, but only if authorID owns the post.
//
// The current row is read first so unpatched fields carry over; the actual
// ownership decision happens inside the repository's conditional UPDATE, so
// a post deleted or re-owned between the read and the write still fails
// with NotFoundOrForbidden rather than clobbering someone else's data.
func (s *PostService) Update(ctx context.Context, authorID, id string, patch PostPatch) (*model.Post, error) {
	current, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFoundOrForbidden("post")
	}
	if current.AuthorID != authorID {
		return nil, apperror.NotFoundOrForbidden("post")
	}

	post := current.Post
	if patch.Title != nil {
		post.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.ImageURL != nil {
		post.ImageURL = *patch.ImageURL
	}
	if patch.Published != nil {
		post.Published = *patch.Published
	}

	if err := validatePostFields(post.Title, post.Content); err != nil {
		return nil, err
	}

	if err := s.posts.UpdatePost(ctx, &post, authorID); err != nil {
		return nil, err
	}

	return &post, nil
}

// Delete removes a post under the same conditional-ownership rule as Update.
func (s *PostService) Delete(ctx context.Context, authorID, id string) error {
	if err := s.posts.DeletePost(ctx, id, authorID); err != nil {
		return err
	}
	s.logger.Info("post deleted",
		slog.String("postID", id),
		slog.String("authorID", authorID),
	)
	return nil
}

// MyPosts returns all of the author's posts, drafts included, newest first.
func (s *PostService) MyPosts(ctx context.Context, authorID string) ([]model.FeedItem, error) {
	items, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts for author %s: %w", authorID, err)
	}
	if items == nil {
		items = []model.FeedItem{}
	}
	return items, nil
}

func validatePostFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if strings.TrimSpace(content) == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	return nil
}
