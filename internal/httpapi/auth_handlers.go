package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"example.com/wordle-server/internal/auth"
	"github.com/google/uuid"
)

// AuthHandler hands out anonymous player identities.
type AuthHandler struct {
	Auth           *auth.Service
	IdentityTTL    time.Duration
	GoogleClientID string
	Log            *slog.Logger

	// Secure marks the identity cookie Secure; off in dev so it works over plain http.
	Secure bool
}

func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/guid", h.GUID)
	mux.HandleFunc("GET /api/google-client-id", h.ClientID)
	mux.HandleFunc("GET /api/me", h.Me)
}

// GUID mints a fresh player id and stores it, signed, in the identity cookie.
func (h *AuthHandler) GUID(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()

	token, err := h.Auth.Sign(id, h.IdentityTTL)
	if err != nil {
		if h.Log != nil {
			h.Log.Error("sign identity", "err", err)
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to sign identity")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     IdentityCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.IdentityTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, GUIDResponse{GUID: id})
}

func (h *AuthHandler) ClientID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ClientIDResponse{ClientID: h.GoogleClientID})
}

// Me reports the player id carried by the identity cookie.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no identity cookie")
		return
	}
	writeJSON(w, http.StatusOK, GUIDResponse{GUID: userID})
}
