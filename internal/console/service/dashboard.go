package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/brainhope/console/internal/console/domain"
	"github.com/brainhope/console/pkg/adminapi"
)

const recentUserCount = 5

// DashboardService aggregates the numbers shown on the landing page.
type DashboardService struct {
	Auth   *AuthService
	Logger *slog.Logger
}

// Stats returns user totals. It prefers the upstream statistics endpoint
// and falls back to counting the user list when that endpoint is missing
// or returns nothing useful.
func (s *DashboardService) Stats(ctx context.Context) (domain.Stats, error) {
	api, err := s.Auth.API(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	if stats, ok := s.statsFromEndpoint(ctx, api); ok {
		return stats, nil
	}

	records, err := api.Users(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return countStats(records), nil
}

// RecentUsers returns the newest users as the upstream lists them first.
func (s *DashboardService) RecentUsers(ctx context.Context) ([]domain.User, error) {
	api, err := s.Auth.API(ctx)
	if err != nil {
		return nil, err
	}

	records, err := api.Users(ctx)
	if err != nil {
		return nil, err
	}

	n := min(len(records), recentUserCount)
	users := make([]domain.User, 0, n)
	for _, rec := range records[:n] {
		users = append(users, userFromRecord(rec))
	}
	return users, nil
}

func (s *DashboardService) statsFromEndpoint(ctx context.Context, api *adminapi.Session) (domain.Stats, bool) {
	body, err := api.Statistics(ctx)
	if err != nil {
		s.Logger.Debug("statistics endpoint unavailable, counting manually", "error", err)
		return domain.Stats{}, false
	}

	stats := domain.Stats{
		TotalUsers: body.Int("totalUsers", "total"),
		Doctors:    body.Int("doctorCount", "doctors"),
		Patients:   body.Int("patientCount", "patients"),
	}
	if stats.TotalUsers == 0 && stats.Doctors == 0 && stats.Patients == 0 {
		return domain.Stats{}, false
	}
	return stats, true
}

// countStats derives totals from the raw user list. Users whose records
// carry no recognisable role fall back to a name/email heuristic; a user
// holding both roles counts toward both columns.
func countStats(records []adminapi.Record) domain.Stats {
	stats := domain.Stats{TotalUsers: len(records)}
	for _, rec := range records {
		roles := adminapi.ExtractRoles(rec)

		isDoctor := hasRoleNamed(roles, "doctor")
		isPatient := hasRoleNamed(roles, "patient")

		if !isDoctor && !isPatient {
			hint := strings.ToLower(rec.Str("userName", "username", "name") + " " + rec.Str("email"))
			if strings.Contains(hint, "doctor") || strings.Contains(hint, "dr") {
				isDoctor = true
			} else if strings.Contains(hint, "patient") {
				isPatient = true
			}
		}

		if isDoctor {
			stats.Doctors++
		}
		if isPatient {
			stats.Patients++
		}
	}
	return stats
}

func hasRoleNamed(roles []string, name string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}
