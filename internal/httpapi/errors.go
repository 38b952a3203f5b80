package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"example.com/wordle-server/internal/game"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, ErrorResponse{Code: errCode, Message: msg})
}

// classify maps a game error to an HTTP status and a stable error code.
func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, game.ErrMissingUserID):
		return http.StatusBadRequest, ErrorResponse{"missing_user", "null user id"}
	case errors.Is(err, game.ErrInvalidInputLength):
		return http.StatusBadRequest, ErrorResponse{"invalid_length", "guess must be 5 letters"}
	case errors.Is(err, game.ErrInvalidSessionID):
		return http.StatusBadRequest, ErrorResponse{"invalid_session", "session id must differ from user id"}
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{"session_not_found", "session not found"}
	case errors.Is(err, game.ErrSessionExists):
		return http.StatusConflict, ErrorResponse{"session_exists", "session already exists"}
	case errors.Is(err, game.ErrConcurrentUpdateConflict):
		return http.StatusConflict, ErrorResponse{"concurrent_update", "score changed concurrently, retry"}
	case errors.Is(err, game.ErrMalformedScoreRecord):
		return http.StatusInternalServerError, ErrorResponse{"malformed_score", "stored score is malformed"}
	case errors.Is(err, game.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{"storage_unavailable", "storage unavailable"}
	default:
		return http.StatusInternalServerError, ErrorResponse{"internal", "internal error"}
	}
}
