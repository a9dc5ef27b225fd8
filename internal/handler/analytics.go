package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/service"
)

// AnalyticsHandler serves the publisher dashboard panels. Both routes sit
// behind RequirePublisher — readers have no dashboard.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *slog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// HandleEngagement returns the 30-day likes series plus all-time totals
// for the caller's posts.
//
// HTTP: GET /api/analytics/likes
func (h *AnalyticsHandler) HandleEngagement(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	report, err := h.analytics.Engagement(r.Context(), sess.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// HandlePublishing returns the 30-day posts-created series for the caller.
//
// HTTP: GET /api/analytics/posts
func (h *AnalyticsHandler) HandlePublishing(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	report, err := h.analytics.Publishing(r.Context(), sess.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
