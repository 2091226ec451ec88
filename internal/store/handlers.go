package store

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-salon/internal/common"
)

// Handler exposes administrative store endpoints.
type Handler struct {
	Store  *Store
	Logger zerolog.Logger
}

// Reset handles POST /api/v1/admin/reset. It wipes all salon data.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "store not configured", nil)
		return
	}
	if err := h.Store.Reset(r.Context()); err != nil {
		h.Logger.Error().Err(err).Msg("reset store")
		common.WriteError(w, err)
		return
	}
	userID, _ := common.UserID(r.Context())
	h.Logger.Warn().Str("user_id", userID).Msg("salon data reset")
	common.Data(w, http.StatusOK, map[string]int64{"revision": h.Store.Revision()})
}
