// internal/server/handlers/analysis.go

package handlers

import (
	"errors"
	"net/http"

	"trendlens/internal/domain/analysis"
)

// AnalysisHandler handles analysis requests
type AnalysisHandler struct {
	analyzer analysis.Analyzer
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer analysis.Analyzer) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
	}
}

// Analyze runs one analysis from a form-encoded POST. The deployment's mode
// decides whether "keyword" or "channel_username" is required.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid form data", nil)
		return
	}

	req := analysis.Request{
		Keyword:         r.PostForm.Get("keyword"),
		ChannelUsername: r.PostForm.Get("channel_username"),
		Region:          r.PostForm.Get("region"),
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		if errors.Is(err, analysis.ErrInvalidRequest) {
			respondWithError(w, r, http.StatusBadRequest, analysis.RequiredField(h.analyzer.Mode())+" is required", nil)
		} else {
			respondWithError(w, r, http.StatusInternalServerError, "Analysis failed", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
