package adminapi

// ExtractRoles flattens whatever role information a user record carries into
// a list of role names. The upstream has served every one of these shapes:
//
//   - roles: an array of strings or role objects
//   - role: a single string or role object
//   - roleName: a single string
//   - userRoles: an array of join records, each holding a role or being one
//   - a grab-bag of other property names, first found wins
//
// Empty entries are dropped. A user with no recognizable role field yields
// an empty slice, never nil semantics beyond that.
func ExtractRoles(user Record) []string {
	if user == nil {
		return []string{}
	}

	if roles, ok := user["roles"].([]any); ok {
		return roleNames(roles)
	}

	if role, ok := user["role"]; ok && role != nil {
		if name := roleName(role); name != "" {
			return []string{name}
		}
		return []string{}
	}

	if name, ok := user["roleName"].(string); ok && name != "" {
		return []string{name}
	}

	if joins, ok := user["userRoles"].([]any); ok {
		names := make([]string, 0, len(joins))
		for _, join := range joins {
			entry := join
			if m, ok := join.(map[string]any); ok {
				if inner, ok := m["role"]; ok && inner != nil {
					entry = inner
				}
			}
			if name := roleName(entry); name != "" {
				names = append(names, name)
			}
		}
		return names
	}

	for _, prop := range []string{"roleNames", "roleIds", "userRole", "roleList"} {
		switch v := user[prop].(type) {
		case []any:
			return roleNames(v)
		case string:
			if v != "" {
				return []string{v}
			}
			return []string{}
		}
	}

	return []string{}
}

func roleNames(entries []any) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name := roleName(entry); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// roleName resolves a single role entry to its display name, preferring
// name over roleName over id.
func roleName(entry any) string {
	switch v := entry.(type) {
	case string:
		return v
	case map[string]any:
		return Record(v).Str("name", "roleName", "id")
	default:
		return ""
	}
}
