package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mnemograph/mnemo/internal/domain"
	"github.com/mnemograph/mnemo/internal/service"
	"github.com/mnemograph/mnemo/internal/store"
)

type MemoryHandler struct {
	svc      *service.MemoryService
	recall   *service.RecallService
	temporal *service.TemporalRetriever
}

func NewMemoryHandler(svc *service.MemoryService, recall *service.RecallService, temporal *service.TemporalRetriever) *MemoryHandler {
	return &MemoryHandler{svc: svc, recall: recall, temporal: temporal}
}

type createMemoryRequest struct {
	AgentID    string  `json:"agent_id"`
	Content    string  `json:"content"`
	Type       string  `json:"type,omitempty"`
	SessionID  string  `json:"session_id,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Importance float64 `json:"importance,omitempty"`
}

func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node, err := h.svc.Remember(r.Context(), service.RememberParams{
		Content:    req.Content,
		AgentID:    req.AgentID,
		MemoryType: req.Type,
		SessionID:  req.SessionID,
		Confidence: req.Confidence,
		Importance: req.Importance,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent), errors.Is(err, service.ErrEmptyAgentID):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to store memory")
		}
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

func (h *MemoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid memory id")
		return
	}

	node, err := h.svc.GetMemory(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "memory not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get memory")
		return
	}

	writeJSON(w, http.StatusOK, node)
}

type recallRequest struct {
	Query          string         `json:"query"`
	AgentID        string         `json:"agent_id"`
	Mode           string         `json:"mode,omitempty"`
	Limit          int            `json:"limit,omitempty"`
	EntityNames    []string       `json:"entity_names,omitempty"`
	MetadataFilter map[string]any `json:"metadata_filter,omitempty"`
	TimeoutMS      int            `json:"timeout_ms,omitempty"`
}

type recallResponse struct {
	Memories []domain.MemoryResult `json:"memories"`
	Query    string                `json:"query"`
	Count    int                   `json:"count"`
}

func (h *MemoryHandler) Recall(w http.ResponseWriter, r *http.Request) {
	var req recallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.AgentID == "" {
		writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}

	results := h.recall.Recall(r.Context(), service.RecallParams{
		Query:          req.Query,
		AgentID:        req.AgentID,
		Mode:           domain.ParseReasoningMode(req.Mode),
		Limit:          req.Limit,
		EntityNames:    req.EntityNames,
		MetadataFilter: req.MetadataFilter,
		Timeout:        time.Duration(req.TimeoutMS) * time.Millisecond,
	})
	if results == nil {
		results = []domain.MemoryResult{}
	}

	writeJSON(w, http.StatusOK, recallResponse{
		Memories: results,
		Query:    req.Query,
		Count:    len(results),
	})
}

type rangeResponse struct {
	Memories []domain.MemoryResult `json:"memories"`
	Count    int                   `json:"count"`
}

// Range returns an agent's memories created inside [start, end],
// RFC 3339 timestamps, newest first.
func (h *MemoryHandler) Range(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	agentID := q.Get("agent_id")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end timestamp")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end precedes start")
		return
	}

	limit := 50
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}

	results, err := h.temporal.MemoriesInRange(r.Context(), agentID, start, end, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query range")
		return
	}
	if results == nil {
		results = []domain.MemoryResult{}
	}

	writeJSON(w, http.StatusOK, rangeResponse{Memories: results, Count: len(results)})
}
