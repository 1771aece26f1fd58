package api

import (
	"net/http"
)

// dashboardHandler serves the operations dashboard.
type dashboardHandler struct{}

func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests.
// The page scrapes /healthz and /stats and charts sessions, uploads and chart runs.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}
