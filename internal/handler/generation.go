package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aminulbx/genboard/internal/model"
)

type generationService interface {
	Generate(ctx context.Context, userID, projectID, prompt string) (*model.Generation, error)
	ListGenerations(ctx context.Context, userID, projectID string, limit int) ([]model.Generation, error)
}

type statsService interface {
	Stats(ctx context.Context, userID, projectID string) (*model.StatsSummary, error)
}

type GenerationHandler struct {
	generations generationService
	stats       statsService
	logger      *slog.Logger
}

func NewGenerationHandler(generations generationService, stats statsService, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{generations: generations, stats: stats, logger: logger}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// HandleGenerate submits a component generation request.
//
// POST /api/projects/{id}/generations
//
// Returns 202 with the pending record: the actual generation runs on the
// worker pool, and clients poll the list endpoint for the outcome.
func (h *GenerationHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	gen, err := h.generations.Generate(r.Context(), userID, r.PathValue("id"), req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, gen)
}

// HandleList returns the project's generations, newest first.
//
// GET /api/projects/{id}/generations?limit=20
func (h *GenerationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	gens, err := h.generations.ListGenerations(r.Context(), userID, r.PathValue("id"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gens)
}

// HandleStats returns the project's usage summary.
//
// GET /api/projects/{id}/stats
func (h *GenerationHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.stats.Stats(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
