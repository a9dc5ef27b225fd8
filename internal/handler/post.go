package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/service"
)

// PostHandler serves the public feed and the publisher's post CRUD.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// queryLimit parses the optional ?limit= parameter. Absent or garbage
// values come back as 0 and let the service apply its default.
func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// HandleFeed returns one page of the published-post feed.
//
// HTTP: GET /api/feed?limit=10&cursor=xxx&search=go
// Auth: none — the feed is public.
//
// The response carries items plus nextCursor; a missing nextCursor means
// the last page. Clients pass the cursor back verbatim for the next page.
func (h *PostHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := h.posts.Feed(r.Context(), queryLimit(r), q.Get("cursor"), q.Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleGet returns a single post with author and like count.
//
// HTTP: GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	item, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"), sess.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// HandleCreate creates a post for the signed-in publisher.
//
// HTTP: POST /api/posts
// Body: {"title": "...", "content": "...", "imageUrl": "...", "published": true}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var input service.PostInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), sess.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleUpdate applies a partial edit to the caller's own post. Fields
// omitted from the body stay as they are.
//
// HTTP: PUT /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var patch service.PostPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Update(r.Context(), sess.ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes the caller's own post.
//
// HTTP: DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	if err := h.posts.Delete(r.Context(), sess.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// HandleMine lists all of the caller's posts, drafts included.
//
// HTTP: GET /api/posts/mine
func (h *PostHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	items, err := h.posts.MyPosts(r.Context(), sess.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
