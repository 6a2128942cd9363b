package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/xclip/internal/repository"
	"github.com/iconidentify/xclip/pkg/twitter"
)

var startTime = time.Now()

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	jobRepo repository.JobRepository
	tokens  *twitter.GuestTokenCache
}

// NewHealthHandler creates a new health handler. tokens may be nil.
func NewHealthHandler(jobRepo repository.JobRepository, tokens *twitter.GuestTokenCache) *HealthHandler {
	return &HealthHandler{
		jobRepo: jobRepo,
		tokens:  tokens,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Queue     *repository.QueueStats `json:"queue,omitempty"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.jobRepo.Stats(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Queue:     stats,
	})
}

// SystemStats contains process and resolver statistics.
type SystemStats struct {
	Uptime           int64                  `json:"uptime_seconds"`
	UptimeHuman      string                 `json:"uptime_human"`
	MemAlloc         string                 `json:"mem_alloc"`
	MemSys           string                 `json:"mem_sys"`
	NumGoroutines    int                    `json:"num_goroutines"`
	NumCPU           int                    `json:"num_cpu"`
	GuestTokenValid  bool                   `json:"guest_token_valid"`
	GuestTokenExpiry string                 `json:"guest_token_expires,omitempty"`
	Queue            *repository.QueueStats `json:"queue,omitempty"`
}

// Stats handles GET /api/v1/stats - system statistics.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(startTime)

	stats := SystemStats{
		Uptime:        int64(uptime.Seconds()),
		UptimeHuman:   formatUptime(uptime),
		MemAlloc:      humanize.Bytes(m.Alloc),
		MemSys:        humanize.Bytes(m.Sys),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
	}

	if h.tokens != nil && !h.tokens.IsExpired() {
		stats.GuestTokenValid = true
		stats.GuestTokenExpiry = humanize.Time(h.tokens.Expiry())
	}
	if q, err := h.jobRepo.Stats(r.Context()); err == nil {
		stats.Queue = q
	}

	writeJSON(w, http.StatusOK, stats)
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
