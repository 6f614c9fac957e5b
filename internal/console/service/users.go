package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brainhope/console/internal/console/domain"
	"github.com/brainhope/console/pkg/adminapi"
)

// ValidationError marks input problems the operator can fix. The HTTP
// layer renders its message verbatim instead of a generic failure page.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// fallbackRoles are served when the upstream role listing is empty or
// unreachable. The Doctor ID is the well-known GUID the upstream has
// always used; Admin and Patient use their legacy numeric IDs.
var fallbackRoles = []domain.Role{
	{ID: "a1884f1d-3eaf-46b8-b71b-26878bbb0283", Name: "Doctor"},
	{ID: "2", Name: "Admin"},
	{ID: "3", Name: "Patient"},
}

// UserService exposes the upstream user directory: listing with search
// and role filtering, creation, and role assignment.
type UserService struct {
	Auth   *AuthService
	Logger *slog.Logger
}

// List fetches all users, then applies the search query and role filter
// locally. The upstream has no server-side search.
func (s *UserService) List(ctx context.Context, search, roleFilter string) ([]domain.User, error) {
	api, err := s.Auth.API(ctx)
	if err != nil {
		return nil, err
	}

	records, err := api.Users(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(records))
	for _, rec := range records {
		users = append(users, userFromRecord(rec))
	}

	if search != "" {
		users = filterSearch(users, search)
	}
	if roleFilter != "" {
		users = filterRole(users, roleFilter)
	}
	return users, nil
}

// Roles returns the assignable roles. It degrades to a built-in list
// rather than failing, so the create-user form always renders.
func (s *UserService) Roles(ctx context.Context) []domain.Role {
	api, err := s.Auth.API(ctx)
	if err != nil {
		s.Logger.Warn("using fallback roles", "error", err)
		return fallbackRoles
	}

	roles, err := api.Roles(ctx)
	if err != nil || len(roles) == 0 {
		if err != nil {
			s.Logger.Warn("role listing failed, using fallback roles", "error", err)
		}
		return fallbackRoles
	}

	out := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, domain.Role{ID: r.ID, Name: r.Name})
	}
	return out
}

// Create validates the input locally, then submits it upstream. The
// upstream result message is returned so the caller can surface it.
func (s *UserService) Create(ctx context.Context, input domain.CreateUserInput) (string, error) {
	if input.Password != input.ConfirmPassword {
		return "", &ValidationError{Message: "Passwords do not match."}
	}
	if !validNationalID(input.NationalID) {
		return "", &ValidationError{Message: "National ID must be exactly 14 digits."}
	}
	if len(input.Roles) == 0 {
		return "", &ValidationError{Message: "Please select at least one role."}
	}

	api, err := s.Auth.API(ctx)
	if err != nil {
		return "", err
	}

	result, err := api.CreateUser(ctx, adminapi.CreateUserInput{
		UserName:        input.UserName,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		NationalID:      input.NationalID,
		Roles:           input.Roles,
		PhotoName:       input.PhotoName,
		Photo:           input.Photo,
	})
	if err != nil {
		return "", err
	}
	if !result.Succeeded() {
		return "", fmt.Errorf("%s", result.Message("Failed to create user"))
	}

	s.Logger.Info("user created", "email", input.Email)
	return result.Message("User created successfully!"), nil
}

// AssignRole grants a role to the user identified by national ID.
func (s *UserService) AssignRole(ctx context.Context, nationalID, roleID string) (string, error) {
	if !validNationalID(nationalID) {
		return "", &ValidationError{Message: "National ID must be exactly 14 digits."}
	}
	if roleID == "" {
		return "", &ValidationError{Message: "Please select at least one role."}
	}

	api, err := s.Auth.API(ctx)
	if err != nil {
		return "", err
	}

	result, err := api.AssignRole(ctx, nationalID, roleID)
	if err != nil {
		return "", err
	}
	if !result.Succeeded() {
		return "", fmt.Errorf("%s", result.Message("Failed to assign role"))
	}

	s.Logger.Info("role assigned", "national_id", nationalID, "role_id", roleID)
	return result.Message("Role assigned successfully"), nil
}

func validNationalID(id string) bool {
	if len(id) != 14 {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func userFromRecord(rec adminapi.Record) domain.User {
	return domain.User{
		ID:         rec.Str("id", "userId"),
		UserName:   rec.Str("userName", "username", "name"),
		Email:      rec.Str("email"),
		NationalID: rec.Str("nationalId", "national_id"),
		Roles:      adminapi.ExtractRoles(rec),
	}
}

// filterSearch ranks matches in three tiers: leading prefix on any
// identity field, then prefix of any word in the user name, then plain
// substring. The first tier with hits wins.
func filterSearch(users []domain.User, query string) []domain.User {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return users
	}

	var prefix, wordPrefix, substring []domain.User
	for _, u := range users {
		name := strings.ToLower(u.UserName)
		email := strings.ToLower(u.Email)
		nid := strings.ToLower(u.NationalID)

		switch {
		case strings.HasPrefix(name, q) || strings.HasPrefix(email, q) || strings.HasPrefix(nid, q):
			prefix = append(prefix, u)
		case wordHasPrefix(name, q):
			wordPrefix = append(wordPrefix, u)
		case strings.Contains(name, q) || strings.Contains(email, q) || strings.Contains(nid, q):
			substring = append(substring, u)
		}
	}

	if len(prefix) > 0 {
		return prefix
	}
	if len(wordPrefix) > 0 {
		return wordPrefix
	}
	if substring == nil {
		return []domain.User{}
	}
	return substring
}

func wordHasPrefix(name, q string) bool {
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, q) {
			return true
		}
	}
	return false
}

func filterRole(users []domain.User, role string) []domain.User {
	out := []domain.User{}
	for _, u := range users {
		for _, r := range u.Roles {
			if strings.EqualFold(r, role) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
