package staff

import (
	"net/http"

	"github.com/noah-isme/backend-salon/internal/common"
)

// Handler serves the read-only roster.
type Handler struct {
	Roster Roster
}

// List handles GET /api/v1/staff. ?scheduled=true limits the list to shift-taking staff.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	roster := h.Roster
	if r.URL.Query().Get("scheduled") == "true" {
		roster = roster.Scheduled()
	}
	common.Data(w, http.StatusOK, roster)
}
