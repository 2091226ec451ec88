package auth

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-salon/internal/common"
)

// Handler exposes the login endpoints.
type Handler struct {
	Service *Service
	Logger  zerolog.Logger
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth service not configured", nil)
		return
	}
	var req loginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.Service.Login(req.Username, req.Password)
	if err != nil {
		h.Logger.Info().Str("username", req.Username).Str("client_ip", common.ClientIP(r)).Msg("login rejected")
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, result)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth service not configured", nil)
		return
	}
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	user, ok := h.Service.User(claims)
	if !ok {
		common.WriteError(w, common.NotFound("user", nil))
		return
	}
	common.Data(w, http.StatusOK, user)
}
