package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/epinal/sharpline/internal/domain"
)

// PipelineRunner is the subset of the pipeline the trigger endpoint needs.
type PipelineRunner interface {
	RunOnce(ctx context.Context) ([]domain.Pick, error)
}

// PipelineHandler exposes a manual pipeline trigger.
type PipelineHandler struct {
	runner  PipelineRunner
	running atomic.Bool
	logger  *slog.Logger
}

// NewPipelineHandler creates a PipelineHandler for the given runner.
func NewPipelineHandler(runner PipelineRunner, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		runner: runner,
		logger: logger,
	}
}

// TriggerPipeline runs one pipeline cycle synchronously and reports the fresh
// picks it produced. Concurrent triggers are rejected with 409 so a slow
// cycle cannot be stacked.
// POST /api/pipeline/trigger
func (h *PipelineHandler) TriggerPipeline(w http.ResponseWriter, r *http.Request) {
	if !h.running.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "pipeline cycle already running")
		return
	}
	defer h.running.Store(false)

	fresh, err := h.runner.RunOnce(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: pipeline trigger failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "pipeline cycle failed")
		return
	}

	if fresh == nil {
		fresh = []domain.Pick{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "complete",
		"fresh":  len(fresh),
		"picks":  fresh,
	})
}
