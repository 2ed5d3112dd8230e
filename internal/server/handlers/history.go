// internal/server/handlers/history.go

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"trendlens/internal/domain/analysis"
)

const maxHistoryLimit = 100

// HistoryHandler serves recorded analyses. A nil reader means history is disabled.
type HistoryHandler struct {
	history analysis.HistoryReader
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history analysis.HistoryReader) *HistoryHandler {
	return &HistoryHandler{
		history: history,
	}
}

// ListAnalyses returns the most recent analyses
func (h *HistoryHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondWithError(w, r, http.StatusServiceUnavailable, "Analysis history is disabled", nil)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondWithError(w, r, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	summaries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Failed to list analyses", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": summaries,
		"count":    len(summaries),
	})
}

// GetAnalysis returns the stored response of one analysis
func (h *HistoryHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondWithError(w, r, http.StatusServiceUnavailable, "Analysis history is disabled", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondWithError(w, r, http.StatusNotFound, "Analysis not found", nil)
		return
	}

	payload, err := h.history.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, analysis.ErrNotFound) {
			respondWithError(w, r, http.StatusNotFound, "Analysis not found", nil)
		} else {
			respondWithError(w, r, http.StatusInternalServerError, "Failed to get analysis", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, payload)
}
