package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Users fetches every upstream user. Filtering happens client-side; the
// upstream has no query parameters.
func (s *Session) Users(ctx context.Context) ([]Record, error) {
	body, err := s.get(ctx, getAllUsersPath, "Error loading users")
	if err != nil {
		return nil, err
	}
	return UnwrapList(body)
}

// Roles fetches the role catalogue. An empty catalogue is not an error;
// callers decide whether to substitute defaults.
func (s *Session) Roles(ctx context.Context) ([]Role, error) {
	body, err := s.get(ctx, getAllRolesPath, "Failed to fetch roles")
	if err != nil {
		return nil, err
	}

	records, err := UnwrapList(body)
	if err != nil {
		return nil, err
	}

	roles := make([]Role, 0, len(records))
	for _, rec := range records {
		roles = append(roles, RoleFromRecord(rec))
	}
	return roles, nil
}

// Statistics fetches the aggregate user counts object.
func (s *Session) Statistics(ctx context.Context) (Record, error) {
	body, err := s.get(ctx, userStatisticsPath, "Failed to get user statistics")
	if err != nil {
		return nil, err
	}
	return UnwrapObject(body)
}

// CreateUser submits the user creation form as multipart. Roles defaults to
// Patient when empty; the photo part is included only when provided.
func (s *Session) CreateUser(ctx context.Context, in CreateUserInput) (*OpResult, error) {
	fields := []FormField{
		{"UserName", in.UserName},
		{"Email", in.Email},
		{"Password", in.Password},
		{"ConfirmPassword", in.ConfirmPassword},
		{"NationalId", in.NationalID},
	}
	if len(in.Roles) == 0 {
		fields = append(fields, FormField{"Roles", "Patient"})
	}
	for _, role := range in.Roles {
		fields = append(fields, FormField{"Roles", role})
	}

	body, err := NewFormBody(fields, "ProfilePhoto", in.PhotoName, in.Photo)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user form: %w", err)
	}

	return s.post(ctx, createUserPath, body, "Failed to create user")
}

// AssignRole assigns a role to the user identified by national ID.
func (s *Session) AssignRole(ctx context.Context, nationalID, roleID string) (*OpResult, error) {
	payload := map[string]string{
		"nationalId": nationalID,
		"roleId":     roleID,
	}
	return s.post(ctx, assignRolePath, payload, "Failed to assign role")
}

// OpResult is the upstream's verdict on a write operation.
type OpResult struct {
	StatusCode int
	Body       Record
}

// Succeeded reports operation success. An explicit body verdict wins:
// isSuccess or status "Success" marks success, isSuccess with any other
// value marks failure even on a 200. A plain 200 counts only when the
// body carries no verdict at all, since the upstream has been seen
// returning success payloads with other 2xx codes and failure payloads
// with 200.
func (r *OpResult) Succeeded() bool {
	if r.Body["isSuccess"] == true || r.Body.Str("status") == "Success" {
		return true
	}
	if _, verdict := r.Body["isSuccess"]; verdict {
		return false
	}
	return r.StatusCode == http.StatusOK
}

// Message returns the upstream's message, or fallback when absent.
func (r *OpResult) Message(fallback string) string {
	if msg := r.Body.Str("message", "error"); msg != "" {
		return msg
	}
	return fallback
}

// get performs an authenticated GET and returns the body of a 2xx response.
func (s *Session) get(ctx context.Context, path, errContext string) ([]byte, error) {
	resp, err := s.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(body, fmt.Sprintf("%s: %d", errContext, resp.StatusCode)),
		}
	}
	return body, nil
}

// post performs an authenticated POST and parses the outcome. Non-2xx maps
// to an HTTPError; a 2xx is returned as an OpResult for the caller to judge.
func (s *Session) post(ctx context.Context, path string, body any, errContext string) (*OpResult, error) {
	resp, err := s.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var rec Record
	_ = json.Unmarshal(respBody, &rec) // non-JSON bodies leave rec nil

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(respBody, fmt.Sprintf("%s: %d", errContext, resp.StatusCode)),
		}
	}

	return &OpResult{StatusCode: resp.StatusCode, Body: rec}, nil
}
