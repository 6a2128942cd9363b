package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/service"
)

// BatchHandler handles batch submission and polling.
type BatchHandler struct {
	batchSvc *service.BatchService
	logger   *slog.Logger
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(batchSvc *service.BatchService, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{
		batchSvc: batchSvc,
		logger:   logger,
	}
}

// SubmitBatchRequest is the JSON request body for POST /api/v1/batches.
type SubmitBatchRequest struct {
	URLs        []string `json:"urls"`
	Quality     string   `json:"quality,omitempty"`
	ToGif       bool     `json:"to_gif,omitempty"`
	AlwaysProxy bool     `json:"always_proxy,omitempty"`
}

// JobResponse represents a job in batch and job responses.
type JobResponse struct {
	JobID     string           `json:"job_id"`
	BatchID   string           `json:"batch_id"`
	URL       string           `json:"url"`
	Status    domain.JobStatus `json:"status"`
	Attempts  int              `json:"attempts"`
	Plan      *domain.PlanView `json:"plan,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// BatchResponse is returned for batch submission and status queries.
type BatchResponse struct {
	BatchID   string        `json:"batch_id"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Pending   int           `json:"pending"`
	Done      bool          `json:"done"`
	Jobs      []JobResponse `json:"jobs"`
}

func newJobResponse(j *domain.Job) JobResponse {
	return JobResponse{
		JobID:     j.ID.String(),
		BatchID:   j.BatchID.String(),
		URL:       j.URL,
		Status:    j.Status,
		Attempts:  j.Attempts,
		Plan:      domain.NewPlanView(j.Plan),
		ErrorCode: j.ErrorCode,
		Error:     j.LastError,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

func newBatchResponse(s *domain.BatchSummary) BatchResponse {
	resp := BatchResponse{
		BatchID:   s.BatchID.String(),
		Total:     s.Total,
		Completed: s.Completed,
		Failed:    s.Failed,
		Pending:   s.Pending,
		Done:      s.Done(),
		Jobs:      make([]JobResponse, 0, len(s.Jobs)),
	}
	for _, j := range s.Jobs {
		resp.Jobs = append(resp.Jobs, newJobResponse(j))
	}
	return resp
}

// Submit handles POST /api/v1/batches.
func (h *BatchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.batchSvc.SubmitBatch(r.Context(), req.URLs, domain.ResolveOptions{
		Quality:     req.Quality,
		ToGif:       req.ToGif,
		AlwaysProxy: req.AlwaysProxy,
	})
	if err != nil {
		writeResolveError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, newBatchResponse(summary))
}

// Get handles GET /api/v1/batches/{batchID}.
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	batchID := domain.BatchID(chi.URLParam(r, "batchID"))

	summary, err := h.batchSvc.GetBatch(r.Context(), batchID)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchResponse(summary))
}

// GetJob handles GET /api/v1/jobs/{jobID}.
func (h *BatchHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := domain.JobID(chi.URLParam(r, "jobID"))

	job, err := h.batchSvc.GetJob(r.Context(), jobID)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobResponse(job))
}
