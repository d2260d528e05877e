package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/avetrov/filmweek/internal/middleware"
	"github.com/avetrov/filmweek/internal/models"
	"github.com/avetrov/filmweek/internal/service"
)

// maxUploadBytes bounds the in-memory portion of a multipart upload.
const maxUploadBytes = 10 << 20

// IngestService defines the interface for ratings ingestion required by
// the RatingsHandler.
type IngestService interface {
	IngestCSV(ctx context.Context, userID int, file io.Reader) (models.UploadReport, error)
}

// RatingsHandler handles HTTP requests for ratings ingestion.
type RatingsHandler struct {
	IngestService IngestService
}

// Upload handles POST /api/ratings/upload. The CSV arrives as the "file"
// multipart part; the target user defaults to the authenticated one and
// may be overridden with a user_id query parameter.
func (h *RatingsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid user id")
			return
		}
		userID = id
	}
	if userID == 0 {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	report, err := h.IngestService.IngestCSV(r.Context(), userID, file)
	if errors.Is(err, service.ErrBadCSV) {
		writeDetail(w, http.StatusBadRequest, "invalid CSV file")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
