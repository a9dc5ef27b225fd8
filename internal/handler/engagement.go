package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/service"
)

// maxBulkStatusIDs caps how many posts one bulk status call may cover —
// one feed page plus slack, not an unbounded IN clause.
const maxBulkStatusIDs = 100

// EngagementHandler serves like/bookmark toggles, status lookups and the
// bookmark reading list.
type EngagementHandler struct {
	engagement *service.EngagementService
	logger     *slog.Logger
}

// NewEngagementHandler creates an EngagementHandler.
func NewEngagementHandler(engagement *service.EngagementService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{engagement: engagement, logger: logger}
}

// HandleToggleLike flips the caller's like on a post.
//
// HTTP: POST /api/posts/{id}/like
//
// The response reports the state AFTER the toggle, which is what the UI
// renders — not what the operation "did". Racing duplicates converge at
// the storage layer.
func (h *EngagementHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	liked, err := h.engagement.ToggleLike(r.Context(), sess.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// HandleLikeStatus reports whether the caller likes the post.
//
// HTTP: GET /api/posts/{id}/like
func (h *EngagementHandler) HandleLikeStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	status, err := h.engagement.Status(r.Context(), sess.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"liked": status.Liked})
}

// HandleLikeCount returns a post's like tally. Public — anonymous readers
// see counts too.
//
// HTTP: GET /api/posts/{id}/likes/count
func (h *EngagementHandler) HandleLikeCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.engagement.LikeCount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// HandleToggleBookmark flips the caller's bookmark on a post.
//
// HTTP: POST /api/posts/{id}/bookmark
func (h *EngagementHandler) HandleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	bookmarked, err := h.engagement.ToggleBookmark(r.Context(), sess.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}

// HandleBookmarkStatus reports whether the caller bookmarked the post.
//
// HTTP: GET /api/posts/{id}/bookmark
func (h *EngagementHandler) HandleBookmarkStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	status, err := h.engagement.Status(r.Context(), sess.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": status.Bookmarked})
}

// HandleBulkStatus reports like+bookmark state for a page of posts at once,
// so the feed renders without a request per post.
//
// HTTP: POST /api/engagement/status
// Body: {"postIds": ["...", "..."]}
func (h *EngagementHandler) HandleBulkStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req struct {
		PostIDs []string `json:"postIds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.PostIDs) > maxBulkStatusIDs {
		writeError(w, apperror.ValidationFailed("postIds", "too many post IDs in one request"))
		return
	}

	statuses, err := h.engagement.BulkStatus(r.Context(), sess.ID, req.PostIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"statuses": statuses})
}

// HandleBookmarks returns one page of the caller's reading list.
//
// HTTP: GET /api/bookmarks?limit=10&cursor=xxx
func (h *EngagementHandler) HandleBookmarks(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	page, err := h.engagement.Bookmarks(r.Context(), sess.ID, queryLimit(r), r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
