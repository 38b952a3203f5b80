package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"example.com/wordle-server/internal/game"
	"github.com/gorilla/websocket"
)

const (
	defaultPingInterval = 25 * time.Second
	maxSessionIDLen     = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type clientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *clientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.ws.Close()
	})
}

func (c *clientConn) sendEnvelope(typ string, payload any) {
	b, err := json.Marshal(Envelope{Type: typ, Payload: mustJSON(payload)})
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
		// slow reader; drop rather than block the read loop
	}
}

func (c *clientConn) sendError(code, msg string) {
	c.sendEnvelope("error", ErrorPayload{Code: code, Message: msg})
}

// sessionIDFromWSPath extracts the session id from /ws/{sessionId}.
func sessionIDFromWSPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/ws/")
	if !ok || rest == "" || len(rest) > maxSessionIDLen {
		return "", false
	}
	for _, ch := range rest {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return "", false
		}
	}
	return rest, true
}

// ServeWS plays one session live: /ws/{sessionId}.
// The player comes from the identity cookie or ?email=.
func (h *GameHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromWSPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid session id")
		return
	}

	userID := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("email")))
	if userID == "" {
		userID, _ = UserIDFromContext(r.Context())
	}
	if userID == "" {
		h.fail(w, r, game.ErrMissingUserID)
		return
	}

	if _, err := h.Game.GetAnswer(r.Context(), userID, sessionID); err != nil {
		h.fail(w, r, err)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	cc := &clientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}

	ping := h.PingInterval
	if ping <= 0 {
		ping = defaultPingInterval
	}

	// writer loop
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(ping)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-cc.send:
				if !ok {
					return
				}
				_ = ws.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				_ = ws.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()

	log := h.logger().With("user", userID, "session", sessionID)
	log.Debug("ws connected")

	// reader loop
	ctx := r.Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			cc.sendError("bad_json", "invalid json")
			continue
		}

		switch env.Type {
		case "guess":
			var p GuessPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				cc.sendError("bad_input", "invalid payload")
				continue
			}
			guess := strings.TrimSpace(p.Guess)
			if !validLength(guess) {
				cc.sendError("invalid_length", "guess must be 5 letters")
				continue
			}
			if !h.Game.ValidateGuess(guess) {
				cc.sendError("not_in_word_list", "not in word list")
				continue
			}

			res, err := h.Game.CheckGuess(ctx, userID, sessionID, guess)
			if err != nil {
				_, body := classify(err)
				if !errors.Is(err, game.ErrSessionNotFound) {
					log.Error("ws check guess", "err", err)
				}
				cc.sendError(body.Code, body.Message)
				continue
			}
			cc.sendEnvelope("feedback", FeedbackPayload{
				Guess:   guess,
				Colours: res.Strings(),
				Valid:   true,
				Solved:  res.Solved(),
			})

		default:
			cc.sendError("unknown_type", "unknown message type")
		}
	}

	// disconnect
	cc.Close()
	<-done
	log.Debug("ws disconnected")
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
