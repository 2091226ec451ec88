package analytics

import (
	"net/http"
	"strconv"

	"github.com/noah-isme/backend-salon/internal/common"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes the admin reporting endpoints.
type Handler struct {
	Svc *Service
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.Svc == nil || h.Svc.Source == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return false
	}
	return true
}

// Dashboard handles GET /api/v1/analytics/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	d, err := h.Svc.Dashboard(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return
	}
	common.Data(w, http.StatusOK, d)
}

// Commissions handles GET /api/v1/analytics/commissions.
func (h *Handler) Commissions(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	lines, err := h.Svc.Commissions(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return
	}
	common.Data(w, http.StatusOK, lines)
}

// CommissionsXLSX handles GET /api/v1/analytics/commissions.xlsx.
func (h *Handler) CommissionsXLSX(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	lines, err := h.Svc.Commissions(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return
	}
	body, err := CommissionXLSX(lines)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "EXPORT_FAILED", "could not build spreadsheet", nil)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="commissions.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
