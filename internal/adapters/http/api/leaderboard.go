package api

import (
	"net/http"

	"github.com/okian/matchdesk/internal/domain/rating"
)

// LeaderboardHandler handles ranked standings reads.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

type leaderboardResponse struct {
	Scope      rating.Scope `json:"scope"`
	Rows       []rating.Row `json:"rows"`
	LoadFailed bool         `json:"load_failed,omitempty"`
}

// HandleGetLeaderboard returns standings for the requested scope. A failed
// upstream read degrades to an empty table instead of an error page.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, scope, err := h.deps.Leaderboard(r.Context(), r.URL.Query().Get("scope"))
	if err != nil {
		writeJSON(w, http.StatusOK, leaderboardResponse{Scope: scope, Rows: []rating.Row{}, LoadFailed: true})
		return
	}
	if rows == nil {
		rows = []rating.Row{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Scope: scope, Rows: rows})
}
