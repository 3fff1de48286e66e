package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chrona/internal/services"
)

type DashboardHandler struct {
	resource
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{resource: resource{name: "Dashboard", log: log}, dashboard: dashboard}
}

// Get aggregates the overview widgets.
// Accepts optional query param: local_date=YYYY-MM-DD to use as the user's "today".
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Get(r.Context(), ownerID(r), r.URL.Query().Get("local_date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
