// internal/server/handlers/respond.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses. Server errors are logged with the request's
// logger; one that happens after the request deadline is reported as a 504.
func respondWithError(w http.ResponseWriter, r *http.Request, code int, message string, err error) {
	if code >= 500 && errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		code = http.StatusGatewayTimeout
		message = "Request timed out"
	}

	if err != nil && code >= 500 {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", code).Msg(message)
	}

	respondWithJSON(w, code, map[string]string{"error": message})
}
