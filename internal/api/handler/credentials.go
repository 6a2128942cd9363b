package handler

import (
	"log/slog"
	"net/http"

	"github.com/iconidentify/xclip/pkg/twitter"
)

// CredentialsHandler manages the logged-in session used for
// age-restricted posts.
type CredentialsHandler struct {
	store  *twitter.CredentialStore
	logger *slog.Logger
}

// NewCredentialsHandler creates a new credentials handler.
func NewCredentialsHandler(store *twitter.CredentialStore, logger *slog.Logger) *CredentialsHandler {
	return &CredentialsHandler{
		store:  store,
		logger: logger,
	}
}

// SetCredentialsRequest carries either the two session cookies or a raw
// Cookie header containing them.
type SetCredentialsRequest struct {
	AuthToken string `json:"auth_token,omitempty"`
	CT0       string `json:"ct0,omitempty"`
	Cookie    string `json:"cookie,omitempty"`
}

// Set handles PUT /api/v1/credentials.
func (h *CredentialsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetCredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creds := twitter.SessionCredentials{AuthToken: req.AuthToken, CT0: req.CT0}
	if req.Cookie != "" {
		parsed, ok := twitter.ParseSessionCookie(req.Cookie)
		if !ok {
			writeError(w, http.StatusBadRequest, "cookie must contain auth_token and ct0")
			return
		}
		creds = parsed
	}
	if !creds.IsValid() {
		writeError(w, http.StatusBadRequest, "auth_token and ct0 are required")
		return
	}

	h.store.Set(creds)
	h.logger.Info("session credentials updated", "remote_addr", r.RemoteAddr)

	writeJSON(w, http.StatusOK, h.store.Status())
}

// Status handles GET /api/v1/credentials. Secrets are never echoed.
func (h *CredentialsHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Status())
}

// Clear handles DELETE /api/v1/credentials.
func (h *CredentialsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	h.logger.Info("session credentials cleared")
	w.WriteHeader(http.StatusNoContent)
}
