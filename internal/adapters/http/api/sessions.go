package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/matchdesk/internal/app"
	"github.com/okian/matchdesk/internal/domain/roster"
)

// SessionsHandler handles the session lifecycle and roster endpoints.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type reorderRequest struct {
	Phase   string  `json:"phase"`
	Column  string  `json:"column"`
	ItemIDs []int64 `json:"item_ids"`
}

type moveRequest struct {
	ItemID int64  `json:"item_id"`
	Column string `json:"column"`
}

// HandleCreate opens a fresh desk session seeded with the active roster.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet returns the current view of one session.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete discards a session. Unknown ids are treated as already gone.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.deps.DiscardSession(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleReorder applies one drag event to a session roster.
func (h *SessionsHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	col, err := roster.ParseColumn(strings.TrimSpace(req.Column))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := h.deps.Reorder(r.Context(), chi.URLParam(r, "id"), service.Phase(req.Phase), col, req.ItemIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleMove jumps one player straight to a target column.
func (h *SessionsHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	col, err := roster.ParseColumn(strings.TrimSpace(req.Column))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := h.deps.Move(r.Context(), chi.URLParam(r, "id"), req.ItemID, col)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
