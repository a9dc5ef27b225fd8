package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

func TestCreatePost(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)

	post := &model.Post{
		AuthorID:  author.ID,
		Title:     "First Post",
		Content:   "Hello, world.",
		Published: true,
	}
	if err := db.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if post.ID == "" {
		t.Error("CreatePost() did not set post.ID")
	}
	if post.CreatedAt.IsZero() {
		t.Error("CreatePost() did not set post.CreatedAt")
	}
}

func TestGetPostByID_IncludesAuthorAndLikeCount(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)
	reader := createTestUser(t, db, "reader@example.com", model.RoleReader)
	post := createTestPost(t, db, author.ID, "Liked Post")

	if _, err := db.Likes().Insert(context.Background(), reader.ID, post.ID); err != nil {
		t.Fatalf("liking post: %v", err)
	}

	item, err := db.GetPostByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetPostByID() error = %v", err)
	}

	if item.Author.ID != author.ID {
		t.Errorf("Author.ID = %q, want %q", item.Author.ID, author.ID)
	}
	if item.Author.Name != author.Name {
		t.Errorf("Author.Name = %q, want %q", item.Author.Name, author.Name)
	}
	if item.LikeCount != 1 {
		t.Errorf("LikeCount = %d, want 1", item.LikeCount)
	}
}

func TestGetPostByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetPostByID(context.Background(), "no-such-post")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListFeed_NewestFirstAndPublishedOnly(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)

	createTestPost(t, db, author.ID, "oldest")
	createTestPost(t, db, author.ID, "middle")
	draft := &model.Post{AuthorID: author.ID, Title: "draft", Content: "hidden", Published: false}
	if err := db.CreatePost(context.Background(), draft); err != nil {
		t.Fatalf("CreatePost draft: %v", err)
	}
	createTestPost(t, db, author.ID, "newest")

	items, err := db.ListFeed(context.Background(), repository.FeedOptions{
		ListOptions: repository.ListOptions{Limit: 10},
	})
	if err != nil {
		t.Fatalf("ListFeed() error = %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3 (draft excluded)", len(items))
	}
	if items[0].Title != "newest" || items[2].Title != "oldest" {
		t.Errorf("order = [%s %s %s], want newest first", items[0].Title, items[1].Title, items[2].Title)
	}
}

func TestListFeed_CursorWalksWholeFeedWithoutDuplicates(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)

	for _, title := range []string{"a", "b", "c", "d", "e"} {
		createTestPost(t, db, author.ID, title)
	}

	seen := make(map[string]bool)
	cursor := ""
	pages := 0
	for {
		items, err := db.ListFeed(context.Background(), repository.FeedOptions{
			ListOptions: repository.ListOptions{Limit: 2, Cursor: cursor},
		})
		if err != nil {
			t.Fatalf("ListFeed() error = %v", err)
		}
		if len(items) == 0 {
			break
		}

		// Repository returns up to limit+1; the caller-side protocol trims.
		page := items
		if len(page) > 2 {
			page = page[:2]
		}
		for _, item := range page {
			if seen[item.ID] {
				t.Fatalf("post %q appeared on two pages", item.Title)
			}
			seen[item.ID] = true
		}

		if len(items) <= 2 {
			break
		}
		cursor = page[len(page)-1].ID
		pages++
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
	}

	if len(seen) != 5 {
		t.Errorf("walked %d posts, want all 5", len(seen))
	}
}

func TestListFeed_SearchMatchesTitleAndContent(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)

	createTestPost(t, db, author.ID, "Gardening tips")
	body := &model.Post{AuthorID: author.ID, Title: "Unrelated", Content: "all about gardening", Published: true}
	if err := db.CreatePost(context.Background(), body); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	createTestPost(t, db, author.ID, "Cooking")

	// Case differs from both stored rows — LIKE is case-insensitive for ASCII.
	items, err := db.ListFeed(context.Background(), repository.FeedOptions{
		ListOptions: repository.ListOptions{Limit: 10},
		Search:      "GARDEN",
	})
	if err != nil {
		t.Fatalf("ListFeed() error = %v", err)
	}

	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2 (title match + content match)", len(items))
	}
}

func TestListByAuthor_IncludesDrafts(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)
	other := createTestUser(t, db, "other@example.com", model.RolePublisher)

	createTestPost(t, db, author.ID, "mine published")
	draft := &model.Post{AuthorID: author.ID, Title: "mine draft", Content: "wip", Published: false}
	if err := db.CreatePost(context.Background(), draft); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	createTestPost(t, db, other.ID, "not mine")

	items, err := db.ListByAuthor(context.Background(), author.ID)
	if err != nil {
		t.Fatalf("ListByAuthor() error = %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.AuthorID != author.ID {
			t.Errorf("found post by %q in author listing", item.AuthorID)
		}
	}
}

func TestUpdatePost_OwnerSucceeds(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)
	post := createTestPost(t, db, author.ID, "Before")

	post.Title = "After"
	if err := db.UpdatePost(context.Background(), post, author.ID); err != nil {
		t.Fatalf("UpdatePost() error = %v", err)
	}

	item, _ := db.GetPostByID(context.Background(), post.ID)
	if item.Title != "After" {
		t.Errorf("Title = %q, want %q", item.Title, "After")
	}
}

// A non-owner and a missing post must be indistinguishable.
func TestUpdatePost_NonOwnerAndMissingLookTheSame(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)
	attacker := createTestUser(t, db, "attacker@example.com", model.RolePublisher)
	post := createTestPost(t, db, author.ID, "Target")

	post.Title = "Hijacked"
	errNotOwner := db.UpdatePost(context.Background(), post, attacker.ID)

	missing := &model.Post{ID: "no-such-post", Title: "x", Content: "y"}
	errMissing := db.UpdatePost(context.Background(), missing, attacker.ID)

	if !errors.Is(errNotOwner, apperror.ErrNotFound) {
		t.Errorf("non-owner error = %v, want ErrNotFound", errNotOwner)
	}
	if !errors.Is(errMissing, apperror.ErrNotFound) {
		t.Errorf("missing error = %v, want ErrNotFound", errMissing)
	}
	if errNotOwner.Error() != errMissing.Error() {
		t.Errorf("messages differ (%q vs %q) — leaks existence", errNotOwner.Error(), errMissing.Error())
	}

	// And the post is untouched.
	item, _ := db.GetPostByID(context.Background(), post.ID)
	if item.Title != "Target" {
		t.Errorf("Title = %q, post was modified by a non-owner", item.Title)
	}
}

func TestDeletePost_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)
	other := createTestUser(t, db, "other@example.com", model.RolePublisher)
	post := createTestPost(t, db, author.ID, "Doomed")

	if err := db.DeletePost(context.Background(), post.ID, other.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("non-owner delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeletePost(context.Background(), post.ID, author.ID); err != nil {
		t.Fatalf("owner delete error = %v", err)
	}
	if _, err := db.GetPostByID(context.Background(), post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("post still retrievable after delete: %v", err)
	}
}

func TestDeletePost_CascadesLikesAndBookmarks(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)
	reader := createTestUser(t, db, "reader@example.com", model.RoleReader)
	post := createTestPost(t, db, author.ID, "Engaged")

	if _, err := db.Likes().Insert(context.Background(), reader.ID, post.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := db.Bookmarks().Insert(context.Background(), reader.ID, post.ID); err != nil {
		t.Fatalf("bookmark: %v", err)
	}

	if err := db.DeletePost(context.Background(), post.ID, author.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	liked, err := db.Likes().Has(context.Background(), reader.ID, post.ID)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if liked {
		t.Error("like row survived post deletion (ON DELETE CASCADE missing?)")
	}
	bookmarked, err := db.Bookmarks().Has(context.Background(), reader.ID, post.ID)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if bookmarked {
		t.Error("bookmark row survived post deletion")
	}
}

func TestCountByAuthor(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)
	createTestPost(t, db, author.ID, "one")
	createTestPost(t, db, author.ID, "two")

	count, err := db.CountByAuthor(context.Background(), author.ID)
	if err != nil {
		t.Fatalf("CountByAuthor() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestCreatedTimesByAuthor_RespectsCutoff(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", model.RolePublisher)
	createTestPost(t, db, author.ID, "recent")

	times, err := db.CreatedTimesByAuthor(context.Background(), author.ID, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CreatedTimesByAuthor() error = %v", err)
	}
	if len(times) != 1 {
		t.Fatalf("len(times) = %d, want 1", len(times))
	}

	// A cutoff in the future excludes everything.
	times, err = db.CreatedTimesByAuthor(context.Background(), author.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreatedTimesByAuthor() error = %v", err)
	}
	if len(times) != 0 {
		t.Errorf("len(times) = %d, want 0 for a future cutoff", len(times))
	}
}
