package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mnemograph/mnemo/internal/domain"
	"github.com/mnemograph/mnemo/internal/service"
)

type ConflictHandler struct {
	resolution *service.ResolutionEngine
}

func NewConflictHandler(resolution *service.ResolutionEngine) *ConflictHandler {
	return &ConflictHandler{resolution: resolution}
}

type listConflictsResponse struct {
	Conflicts []domain.ConflictSummary `json:"conflicts"`
	Count     int                      `json:"count"`
}

// List returns pending conflicts, most severe first. An agent_id query
// parameter narrows the listing to one agent.
func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")

	conflicts := h.resolution.GetPendingConflicts(r.Context(), agentID)
	if conflicts == nil {
		conflicts = []domain.ConflictSummary{}
	}

	writeJSON(w, http.StatusOK, listConflictsResponse{
		Conflicts: conflicts,
		Count:     len(conflicts),
	})
}

type resolveConflictRequest struct {
	Status     string  `json:"status"`
	ResolvedBy string  `json:"resolved_by"`
	Notes      *string `json:"notes,omitempty"`
}

type resolveConflictResponse struct {
	ConflictID string `json:"conflict_id"`
	Status     string `json:"status"`
	Resolved   bool   `json:"resolved"`
}

// Resolve moves a pending conflict to a terminal state. A conflict that
// does not exist or was already resolved returns 409 so callers can tell
// a lost race from success.
func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	conflictID := chi.URLParam(r, "id")
	if conflictID == "" {
		writeError(w, http.StatusBadRequest, "invalid conflict id")
		return
	}

	var req resolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResolvedBy == "" {
		writeError(w, http.StatusBadRequest, "resolved_by is required")
		return
	}

	resolved, err := h.resolution.ResolveConflict(r.Context(), conflictID, domain.ConflictStatus(req.Status), req.ResolvedBy, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve conflict")
		return
	}
	if !resolved {
		writeError(w, http.StatusConflict, "conflict not found or already resolved")
		return
	}

	writeJSON(w, http.StatusOK, resolveConflictResponse{
		ConflictID: conflictID,
		Status:     req.Status,
		Resolved:   true,
	})
}
