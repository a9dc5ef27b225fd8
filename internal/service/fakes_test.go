package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
//
// In-memory fakes (not a mock framework) keep these tests dependency-free
// and easy to read — you can see exactly what each fake does. IDs are
// zero-padded sequence numbers so lexicographic comparison matches
// insertion order, the same property the real store gets from xid.
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// ---------------------------------------------------------------- users

type fakeUserRepo struct {
	users map[string]*model.User // keyed by internal ID
	seq   int
	// set to a non-nil error to simulate a database failure
	getByIDErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.EmailInUse()
		}
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%03d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = model.RoleReader
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) SetRole(ctx context.Context, id string, role model.Role) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Role = role
	u.Onboarded = true
	return nil
}

func (f *fakeUserRepo) UpdateName(ctx context.Context, id, name string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Name = name
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.AvatarURL = avatarURL
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = passwordHash
	return nil
}

// -------------------------------------------------------------- accounts

type fakeAccountRepo struct {
	links map[string][]string // userID → providers
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{links: make(map[string][]string)}
}

func (f *fakeAccountRepo) Link(ctx context.Context, userID, provider string) error {
	for _, p := range f.links[userID] {
		if p == provider {
			return nil // idempotent
		}
	}
	f.links[userID] = append(f.links[userID], provider)
	return nil
}

func (f *fakeAccountRepo) Providers(ctx context.Context, userID string) ([]string, error) {
	return f.links[userID], nil
}

// ----------------------------------------------------------------- posts

type fakePostRepo struct {
	posts map[string]*model.Post
	seq   int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*model.Post)}
}

func (f *fakePostRepo) CreatePost(ctx context.Context, post *model.Post) error {
	f.seq++
	post.ID = fmt.Sprintf("post-%03d", f.seq)
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) toItem(p *model.Post) model.FeedItem {
	return model.FeedItem{Post: *p, Author: model.PostAuthor{ID: p.AuthorID}}
}

func (f *fakePostRepo) GetPostByID(ctx context.Context, id string) (*model.FeedItem, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	item := f.toItem(p)
	return &item, nil
}

// sortedDesc returns all posts newest-first (IDs are insertion-ordered).
func (f *fakePostRepo) sortedDesc() []*model.Post {
	all := make([]*model.Post, 0, len(f.posts))
	for _, p := range f.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all
}

func (f *fakePostRepo) ListFeed(ctx context.Context, opts repository.FeedOptions) ([]model.FeedItem, error) {
	var items []model.FeedItem
	for _, p := range f.sortedDesc() {
		if !p.Published {
			continue
		}
		if opts.Cursor != "" && p.ID >= opts.Cursor {
			continue
		}
		if opts.Search != "" {
			needle := strings.ToLower(opts.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Content), needle) {
				continue
			}
		}
		items = append(items, f.toItem(p))
		if len(items) == opts.Limit+1 {
			break
		}
	}
	return items, nil
}

func (f *fakePostRepo) ListByAuthor(ctx context.Context, authorID string) ([]model.FeedItem, error) {
	var items []model.FeedItem
	for _, p := range f.sortedDesc() {
		if p.AuthorID == authorID {
			items = append(items, f.toItem(p))
		}
	}
	return items, nil
}

func (f *fakePostRepo) UpdatePost(ctx context.Context, post *model.Post, authorID string) error {
	existing, ok := f.posts[post.ID]
	if !ok || existing.AuthorID != authorID {
		return apperror.NotFoundOrForbidden("post")
	}
	post.UpdatedAt = time.Now()
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) DeletePost(ctx context.Context, id, authorID string) error {
	existing, ok := f.posts[id]
	if !ok || existing.AuthorID != authorID {
		return apperror.NotFoundOrForbidden("post")
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	count := 0
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (f *fakePostRepo) CreatedTimesByAuthor(ctx context.Context, authorID string, since time.Time) ([]time.Time, error) {
	var times []time.Time
	for _, p := range f.posts {
		if p.AuthorID == authorID && !p.CreatedAt.Before(since) {
			times = append(times, p.CreatedAt)
		}
	}
	return times, nil
}

// ------------------------------------------------------- likes/bookmarks

type pairRow struct {
	id        string
	userID    string
	postID    string
	createdAt time.Time
}

// fakePairRepo backs both the like and bookmark fakes — the two interfaces
// share their toggle surface, mirroring the production store.
type fakePairRepo struct {
	rows []pairRow
	seq  int
}

func (f *fakePairRepo) find(userID, postID string) int {
	for i, r := range f.rows {
		if r.userID == userID && r.postID == postID {
			return i
		}
	}
	return -1
}

func (f *fakePairRepo) Insert(ctx context.Context, userID, postID string) (bool, error) {
	if f.find(userID, postID) >= 0 {
		return false, nil
	}
	f.seq++
	f.rows = append(f.rows, pairRow{
		id:        fmt.Sprintf("pair-%03d", f.seq),
		userID:    userID,
		postID:    postID,
		createdAt: time.Now(),
	})
	return true, nil
}

func (f *fakePairRepo) Delete(ctx context.Context, userID, postID string) (bool, error) {
	i := f.find(userID, postID)
	if i < 0 {
		return false, nil
	}
	f.rows = append(f.rows[:i], f.rows[i+1:]...)
	return true, nil
}

func (f *fakePairRepo) Has(ctx context.Context, userID, postID string) (bool, error) {
	return f.find(userID, postID) >= 0, nil
}

func (f *fakePairRepo) HasMany(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	statuses := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		statuses[id] = f.find(userID, id) >= 0
	}
	return statuses, nil
}

type fakeLikeRepo struct {
	fakePairRepo
	posts *fakePostRepo // for author joins
}

func newFakeLikeRepo(posts *fakePostRepo) *fakeLikeRepo {
	return &fakeLikeRepo{posts: posts}
}

func (f *fakeLikeRepo) Count(ctx context.Context, postID string) (int, error) {
	count := 0
	for _, r := range f.rows {
		if r.postID == postID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLikeRepo) CountForAuthor(ctx context.Context, authorID string) (int, error) {
	count := 0
	for _, r := range f.rows {
		if p, ok := f.posts.posts[r.postID]; ok && p.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLikeRepo) TimesForAuthor(ctx context.Context, authorID string, since time.Time) ([]time.Time, error) {
	var times []time.Time
	for _, r := range f.rows {
		if p, ok := f.posts.posts[r.postID]; ok && p.AuthorID == authorID && !r.createdAt.Before(since) {
			times = append(times, r.createdAt)
		}
	}
	return times, nil
}

type fakeBookmarkRepo struct {
	fakePairRepo
	posts *fakePostRepo
}

func newFakeBookmarkRepo(posts *fakePostRepo) *fakeBookmarkRepo {
	return &fakeBookmarkRepo{posts: posts}
}

func (f *fakeBookmarkRepo) ListForUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.BookmarkedPost, error) {
	// Newest bookmark first.
	rows := make([]pairRow, 0, len(f.rows))
	for _, r := range f.rows {
		if r.userID == userID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id > rows[j].id })

	var items []model.BookmarkedPost
	for _, r := range rows {
		if opts.Cursor != "" && r.id >= opts.Cursor {
			continue
		}
		p, ok := f.posts.posts[r.postID]
		if !ok {
			continue
		}
		items = append(items, model.BookmarkedPost{
			FeedItem:   f.posts.toItem(p),
			BookmarkID: r.id,
		})
		if len(items) == opts.Limit+1 {
			break
		}
	}
	return items, nil
}

// --------------------------------------------------------- notifications

type fakeNotificationRepo struct {
	notifications []*model.Notification
	seq           int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	f.seq++
	n.ID = fmt.Sprintf("notif-%03d", f.seq)
	n.CreatedAt = time.Now()
	copied := *n
	f.notifications = append(f.notifications, &copied)
	return nil
}

func (f *fakeNotificationRepo) ListRecent(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	var out []model.Notification
	for i := len(f.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if f.notifications[i].UserID == userID {
			out = append(out, *f.notifications[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

// compile-time interface checks for the fakes
var (
	_ repository.UserRepository         = (*fakeUserRepo)(nil)
	_ repository.AccountRepository      = (*fakeAccountRepo)(nil)
	_ repository.PostRepository         = (*fakePostRepo)(nil)
	_ repository.LikeRepository         = (*fakeLikeRepo)(nil)
	_ repository.BookmarkRepository     = (*fakeBookmarkRepo)(nil)
	_ repository.NotificationRepository = (*fakeNotificationRepo)(nil)
)
