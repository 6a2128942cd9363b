package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/repository"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeResolver is a scripted Resolver.
type fakeResolver struct {
	plan         domain.DownloadPlan
	info         *domain.MediaInfo
	err          error
	probeErr     error
	lastURL      string
	lastOpts     domain.ResolveOptions
	clearedToken bool
}

func (f *fakeResolver) ResolveMedia(ctx context.Context, rawURL string, opts domain.ResolveOptions) (domain.DownloadPlan, error) {
	f.lastURL, f.lastOpts = rawURL, opts
	return f.plan, f.err
}

func (f *fakeResolver) GetMediaInfo(ctx context.Context, rawURL string) (*domain.MediaInfo, error) {
	f.lastURL = rawURL
	return f.info, f.err
}

func (f *fakeResolver) Probe(ctx context.Context, postID string) error {
	return f.probeErr
}

func (f *fakeResolver) ClearGuestToken() {
	f.clearedToken = true
}

// failingStatsRepo is a JobRepository whose Stats always fails.
type failingStatsRepo struct {
	repository.JobRepository
}

func (failingStatsRepo) Stats(ctx context.Context) (*repository.QueueStats, error) {
	return nil, errors.New("repository unavailable")
}

// withURLParam attaches a chi route parameter to r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
