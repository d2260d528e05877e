package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avetrov/filmweek/internal/middleware"
	"github.com/avetrov/filmweek/internal/models"
)

// RecommendService defines the interface for recommendation operations
// required by the RecommendHandler.
type RecommendService interface {
	// Recommendations returns ranked candidates plus an optional
	// informational message.
	Recommendations(ctx context.Context, userID, topN int) ([]models.Recommendation, string, error)
	// Weekly returns the current-period pick with its streaming buckets;
	// a nil recommendation is the "none yet" state.
	Weekly(ctx context.Context, userID int, forceNew bool) (*models.WeeklyRecommendation, models.StreamingData, error)
	// Status reports the gating state for the weekly pick.
	Status(ctx context.Context, userID int) (models.WeeklyStatus, error)
}

// RecommendHandler handles HTTP requests for batch and weekly
// recommendations.
type RecommendHandler struct {
	RecommendService RecommendService
}

// recommendationsBody is the batch endpoint envelope.
type recommendationsBody struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	Message         string                  `json:"message,omitempty"`
}

func topN(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// Recommendations handles GET /api/recommendations for the authenticated
// user.
func (h *RecommendHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	h.respondBatch(w, r, userID)
}

// UserRecommendations handles the legacy GET /api/recommendations/{userID}
// variant, which addresses the user by path instead of by token.
func (h *RecommendHandler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	h.respondBatch(w, r, userID)
}

func (h *RecommendHandler) respondBatch(w http.ResponseWriter, r *http.Request, userID int) {
	recs, message, err := h.RecommendService.Recommendations(r.Context(), userID, topN(r, 10))
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recommendationsBody{Recommendations: recs, Message: message})
}

// weeklyBody pairs the pick with its streaming buckets. Recommendation is
// null when none exists yet.
type weeklyBody struct {
	Recommendation *models.WeeklyRecommendation `json:"recommendation"`
	StreamingData  models.StreamingData         `json:"streaming_data"`
}

// Weekly handles GET /api/weekly-recommendation/{userID}?force_new=bool.
func (h *RecommendHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	forceNew := r.URL.Query().Get("force_new") == "true"

	rec, streaming, err := h.RecommendService.Weekly(r.Context(), userID, forceNew)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, weeklyBody{Recommendation: rec, StreamingData: streaming})
}

// statusBody is the weekly-status envelope.
type statusBody struct {
	Status models.WeeklyStatus `json:"status"`
}

// WeeklyStatus handles GET /api/weekly-recommendation-status/{userID}.
func (h *RecommendHandler) WeeklyStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	status, err := h.RecommendService.Status(r.Context(), userID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, statusBody{Status: status})
}
