package adminapi

import "encoding/json"

// TokenInfo is the normalized result of a successful login or refresh.
// Expiry is kept as the upstream's verbatim string; the upstream has used
// several date formats and the consumer decides how leniently to parse it.
type TokenInfo struct {
	AccessToken  string
	RefreshToken string
	Expiry       string
}

// Record is an upstream JSON object of unknown shape.
type Record map[string]any

// Str returns the first non-empty string value among keys.
func (r Record) Str(keys ...string) string {
	for _, key := range keys {
		if s, ok := r[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first numeric value among keys, truncated to int.
// JSON numbers decode as float64.
func (r Record) Int(keys ...string) int {
	for _, key := range keys {
		if f, ok := r[key].(float64); ok {
			return int(f)
		}
	}
	return 0
}

// Role is a normalized upstream role.
type Role struct {
	ID   string
	Name string
}

// RoleFromRecord normalizes a role object. The upstream variously labels the
// display name as name or roleName, and some responses carry only an id.
func RoleFromRecord(r Record) Role {
	return Role{
		ID:   r.Str("id", "roleId"),
		Name: r.Str("name", "roleName", "id"),
	}
}

// CreateUserInput carries the fields of the user creation form. The photo is
// optional; when present it is sent as a file part.
type CreateUserInput struct {
	UserName        string
	Email           string
	Password        string
	ConfirmPassword string
	NationalID      string
	Roles           []string
	PhotoName       string
	Photo           []byte
}

// UnwrapList extracts the list payload from an upstream body. Bodies arrive
// either as a bare array, as {"isSuccess": ..., "response": [...]}, or as
// {"response": [...]}.
func UnwrapList(body []byte) ([]Record, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrResponseFormat
	}

	switch v := payload.(type) {
	case []any:
		return toRecords(v), nil
	case map[string]any:
		if inner, ok := v["response"].([]any); ok {
			return toRecords(inner), nil
		}
	}
	return nil, ErrResponseFormat
}

// UnwrapObject extracts the object payload from an upstream body, looking
// through the same envelope shapes as UnwrapList.
func UnwrapObject(body []byte) (Record, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrResponseFormat
	}
	if inner, ok := payload["response"].(map[string]any); ok {
		return Record(inner), nil
	}
	return Record(payload), nil
}

func toRecords(items []any) []Record {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, Record(m))
		}
	}
	return records
}
