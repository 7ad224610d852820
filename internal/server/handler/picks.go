package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/epinal/sharpline/internal/domain"
)

// PickHandler serves pick-related HTTP endpoints on top of a
// domain.PickStore.
type PickHandler struct {
	store  domain.PickStore
	logger *slog.Logger
}

// NewPickHandler creates a PickHandler with the given store and logger.
func NewPickHandler(store domain.PickStore, logger *slog.Logger) *PickHandler {
	return &PickHandler{
		store:  store,
		logger: logger,
	}
}

// listPicksResponse wraps the list endpoint output with metadata.
type listPicksResponse struct {
	Picks  []domain.Pick `json:"picks"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListPicks returns recent picks with pagination, newest first.
// GET /api/picks?limit=50&offset=0
func (h *PickHandler) ListPicks(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	picks, err := h.store.ListRecent(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list picks failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list picks")
		return
	}

	total, err := h.store.Count(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: count picks failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to count picks")
		return
	}

	if picks == nil {
		picks = []domain.Pick{}
	}
	writeJSON(w, http.StatusOK, listPicksResponse{
		Picks:  picks,
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// GetPick returns a single pick by its ID.
// GET /api/picks/{id}
func (h *PickHandler) GetPick(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing pick id")
		return
	}

	pick, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pick not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get pick failed",
			slog.String("pick_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get pick")
		return
	}

	writeJSON(w, http.StatusOK, pick)
}

// ListPicksByGame returns every pick stored for one game, newest first.
// GET /api/games/{gameID}/picks
func (h *PickHandler) ListPicksByGame(w http.ResponseWriter, r *http.Request) {
	gameID := pathParam(r, "gameID")
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "missing game id")
		return
	}

	picks, err := h.store.ListByGame(r.Context(), gameID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list picks by game failed",
			slog.String("game_id", gameID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list picks")
		return
	}

	if picks == nil {
		picks = []domain.Pick{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": gameID,
		"picks":   picks,
	})
}
