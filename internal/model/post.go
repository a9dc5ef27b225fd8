package model

import "time"

// Post is an article written by a publisher.
//
// CreatedAt is immutable and is the sole sort key for every listing —
// the feed, a publisher's own posts and the bookmark list all order by it
// descending (ties broken by ID, see the pagination package).
//
// ImageURL is an opaque reference produced by whatever upload mechanism
// sits in front of the API; this core only stores and returns it.
type Post struct {
	ID        string    `json:"id"        db:"id"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	Title     string    `json:"title"     db:"title"`
	Content   string    `json:"content"   db:"content"`
	ImageURL  string    `json:"imageUrl"  db:"image_url"`
	Published bool      `json:"published" db:"published"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PostAuthor is the slice of a User that listings embed next to each post.
type PostAuthor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// FeedItem is a Post enriched with its author and like count, the shape
// returned by the feed and bookmark listings.
type FeedItem struct {
	Post
	Author    PostAuthor `json:"author"`
	LikeCount int        `json:"likeCount"`
}

// BookmarkedPost is a FeedItem reached through a bookmark. The bookmark's
// own ID is the pagination cursor for the bookmark list (the bookmark row,
// not the post, is what gets paginated), so it rides along unexported from
// the JSON shape.
type BookmarkedPost struct {
	FeedItem
	BookmarkID string `json:"-"`
}

// Like marks that a user liked a post. At most one row per (user, post)
// pair — liking again removes the row (toggle semantics). The UNIQUE
// constraint in storage is the backstop against racing double-toggles.
type Like struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	PostID    string    `json:"postId"    db:"post_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Bookmark marks that a user saved a post for later. Same pair-uniqueness
// and toggle semantics as Like.
type Bookmark struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	PostID    string    `json:"postId"    db:"post_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
