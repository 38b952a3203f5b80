package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"example.com/wordle-server/internal/game"
)

// GameHandler exposes the session and score operations over JSON.
type GameHandler struct {
	Game *game.Manager
	Log  *slog.Logger

	// PingInterval for websocket keepalive; zero means 25s.
	PingInterval time.Duration
}

func (h *GameHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	handle := func(pattern string, fn http.HandlerFunc, limited bool) {
		var hh http.Handler = fn
		if limited {
			hh = limit(hh)
		}
		mux.Handle(pattern, hh)
	}

	handle("POST /api/session", h.CreateSession, true)
	handle("DELETE /api/session", h.RemoveSession, true)
	handle("POST /api/sessions/clear", h.RemoveAllSessions, true)
	handle("POST /api/guess/check", h.CheckGuess, true)
	handle("POST /api/guess/validate", h.ValidateGuess, false)
	handle("POST /api/answer", h.GetAnswer, true)
	handle("POST /api/score", h.GetRatio, false)
	handle("POST /api/score/numerator", h.IncrementNumerator, true)
	handle("POST /api/score/denominator", h.IncrementDenominator, true)
	handle("GET /ws/", h.ServeWS, false)
}

func (h *GameHandler) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}

// decode reads the request body and resolves the player: the email in the
// body wins, otherwise the identity cookie.
func decode(r *http.Request) (GameRequest, string, bool) {
	var req GameRequest
	if r.Body != nil {
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			return GameRequest{}, "", false
		}
	}
	req.Guess = strings.TrimSpace(req.Guess)
	req.SessionToken = strings.TrimSpace(req.SessionToken)

	userID := strings.TrimSpace(strings.ToLower(req.Email))
	if userID == "" {
		userID, _ = UserIDFromContext(r.Context())
	}
	return req, userID, true
}

func badJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
}

func missingSession(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "missing_session", "sessionToken is required")
}

func validLength(guess string) bool {
	return utf8.RuneCountInString(guess) == game.WordLength
}

func (h *GameHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	req, userID, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}
	if req.SessionToken == "" {
		missingSession(w)
		return
	}

	if err := h.Game.CreateSession(r.Context(), userID, req.SessionToken); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *GameHandler) RemoveSession(w http.ResponseWriter, r *http.Request) {
	req, userID, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}
	if req.SessionToken == "" {
		missingSession(w)
		return
	}

	if err := h.Game.RemoveSession(r.Context(), userID, req.SessionToken); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *GameHandler) RemoveAllSessions(w http.ResponseWriter, r *http.Request) {
	req, userID, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}
	keepScore := true
	if req.KeepScore != nil {
		keepScore = *req.KeepScore
	}

	if err := h.Game.RemoveAllSessions(r.Context(), userID, keepScore); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *GameHandler) CheckGuess(w http.ResponseWriter, r *http.Request) {
	req, userID, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}
	if userID == "" {
		h.fail(w, r, game.ErrMissingUserID)
		return
	}
	if !validLength(req.Guess) {
		h.fail(w, r, game.ErrInvalidInputLength)
		return
	}

	res, err := h.Game.CheckGuess(r.Context(), userID, req.SessionToken, req.Guess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Colours: res.Strings()})
}

func (h *GameHandler) ValidateGuess(w http.ResponseWriter, r *http.Request) {
	req, _, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: h.Game.ValidateGuess(req.Guess)})
}

func (h *GameHandler) GetAnswer(w http.ResponseWriter, r *http.Request) {
	req, userID, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}
	if userID == "" {
		h.fail(w, r, game.ErrMissingUserID)
		return
	}

	word, err := h.Game.GetAnswer(r.Context(), userID, req.SessionToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Word: word})
}

func (h *GameHandler) GetRatio(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}

	ratio, err := h.Game.GetRatio(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Score: ratio.String()})
}

func (h *GameHandler) IncrementNumerator(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}

	ratio, err := h.Game.IncrementNumerator(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Score: ratio.String()})
}

func (h *GameHandler) IncrementDenominator(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := decode(r)
	if !ok {
		badJSON(w)
		return
	}

	ratio, err := h.Game.IncrementDenominator(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Score: ratio.String()})
}

func (h *GameHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, body := classify(err)
	if code >= http.StatusInternalServerError {
		h.logger().Error("request failed",
			"request_id", RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
	}
	writeJSON(w, code, body)
}
