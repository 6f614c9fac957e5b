package http

import (
	"log/slog"
	"net/http"

	"github.com/brainhope/console/internal/console/domain"
	"github.com/brainhope/console/internal/console/service"
)

// DashboardHandler renders the landing page with user totals and the
// most recently registered users.
type DashboardHandler struct {
	Auth      *service.AuthService
	Dashboard *service.DashboardService
	Views     *views
	Logger    *slog.Logger
}

type dashboardPage struct {
	Authed bool
	Error  string
	Stats  domain.Stats
	Recent []domain.User
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{Authed: true}

	stats, err := h.Dashboard.Stats(r.Context())
	if err != nil {
		if h.Auth.HandleExpired(r.Context(), err) {
			clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.Logger.Error("failed to load stats", "error", err)
		page.Error = "Could not load statistics from the server."
	} else {
		page.Stats = stats
	}

	recent, err := h.Dashboard.RecentUsers(r.Context())
	if err != nil {
		h.Logger.Error("failed to load recent users", "error", err)
	} else {
		page.Recent = recent
	}

	render(w, h.Logger, h.Views.dashboard, http.StatusOK, page)
}
