package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/xclip/internal/domain"
)

// Resolver is the part of the resolve service the HTTP layer uses.
type Resolver interface {
	ResolveMedia(ctx context.Context, rawURL string, opts domain.ResolveOptions) (domain.DownloadPlan, error)
	GetMediaInfo(ctx context.Context, rawURL string) (*domain.MediaInfo, error)
	Probe(ctx context.Context, postID string) error
	ClearGuestToken()
}

// ResolveHandler handles single-post resolution requests.
type ResolveHandler struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(resolver Resolver, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// ResolveRequest is the JSON request body for POST /api/v1/resolve.
type ResolveRequest struct {
	URL         string `json:"url"`
	Quality     string `json:"quality,omitempty"`
	ToGif       bool   `json:"to_gif,omitempty"`
	AlwaysProxy bool   `json:"always_proxy,omitempty"`
	MediaIndex  *int   `json:"media_index,omitempty"`
}

// ProbeResponse is returned by GET /api/v1/probe/{postID}.
type ProbeResponse struct {
	PostID    string `json:"post_id"`
	Available bool   `json:"available"`
}

// Resolve handles POST /api/v1/resolve.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	plan, err := h.resolver.ResolveMedia(r.Context(), req.URL, domain.ResolveOptions{
		Quality:     req.Quality,
		ToGif:       req.ToGif,
		AlwaysProxy: req.AlwaysProxy,
		MediaIndex:  req.MediaIndex,
	})
	if err != nil {
		h.logger.Info("resolve failed", "url", req.URL, "code", domain.ErrorCode(err), "error", err)
		writeResolveError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.NewPlanView(plan))
}

// Info handles GET /api/v1/info?url=...
func (h *ResolveHandler) Info(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	info, err := h.resolver.GetMediaInfo(r.Context(), rawURL)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Probe handles GET /api/v1/probe/{postID}.
func (h *ResolveHandler) Probe(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	err := h.resolver.Probe(r.Context(), postID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ProbeResponse{PostID: postID, Available: true})
	case domain.ErrorCode(err) == domain.CodeContentUnavailable:
		writeJSON(w, http.StatusOK, ProbeResponse{PostID: postID, Available: false})
	default:
		writeResolveError(w, err)
	}
}

// ClearGuestToken handles DELETE /api/v1/auth/guest-token.
func (h *ResolveHandler) ClearGuestToken(w http.ResponseWriter, r *http.Request) {
	h.resolver.ClearGuestToken()
	h.logger.Info("guest token cleared")
	w.WriteHeader(http.StatusNoContent)
}
