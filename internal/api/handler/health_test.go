package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/repository"
	"github.com/iconidentify/xclip/pkg/twitter"
)

func TestHealthHandler_Live(t *testing.T) {
	h := NewHealthHandler(repository.NewInMemoryJobRepository(), nil)

	w := httptest.NewRecorder()
	h.Live(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp HealthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Status != "ok" || resp.Timestamp == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	repo := repository.NewInMemoryJobRepository()
	job := domain.NewJob("job-1", "batch-1", "https://x.com/a/status/1234567890", domain.ResolveOptions{}, 1)
	if err := repo.Enqueue(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	h := NewHealthHandler(repo, nil)

	w := httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp HealthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Queue == nil || resp.Queue.Queued != 1 {
		t.Errorf("queue = %+v", resp.Queue)
	}
}

func TestHealthHandler_ReadyUnavailable(t *testing.T) {
	h := NewHealthHandler(failingStatsRepo{}, nil)

	w := httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHealthHandler_Stats(t *testing.T) {
	tokens := twitter.NewGuestTokenCache(time.Hour)
	h := NewHealthHandler(repository.NewInMemoryJobRepository(), tokens)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	var stats SystemStats
	json.NewDecoder(w.Body).Decode(&stats)
	if stats.GuestTokenValid {
		t.Error("empty cache should not report a valid token")
	}
	if stats.NumCPU == 0 || stats.MemAlloc == "" || stats.Queue == nil {
		t.Errorf("stats = %+v", stats)
	}

	tokens.Set("guest-token")
	w = httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	stats = SystemStats{}
	json.NewDecoder(w.Body).Decode(&stats)
	if !stats.GuestTokenValid || stats.GuestTokenExpiry == "" {
		t.Errorf("token stats = %+v", stats)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "0m"},
		{5 * time.Minute, "5m"},
		{2*time.Hour + 3*time.Minute, "2h 3m"},
		{50*time.Hour + 10*time.Minute, "2d 2h 10m"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
