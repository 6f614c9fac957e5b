// Package jwtx decodes upstream access tokens without verifying them.
//
// The console never holds the upstream's signing keys, so signature
// verification is impossible by construction. The decoded identity is used
// for display and for the client-side admin gate only; the upstream enforces
// authorization on every API call regardless of what the token claims.
package jwtx

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// msRoleClaim is the .NET identity role claim URI. Upstream tokens minted by
// ASP.NET carry roles under this key rather than a bare "role".
const msRoleClaim = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"

// Claims is the subset of token claims the console reads.
type Claims struct {
	Subject  string
	Email    string
	Username string
	Roles    []string
}

// Decode parses the payload of a compact JWT without signature verification.
//
// Claim fallbacks follow what upstream tokens have actually contained:
// Subject from sub then nameid, Username from unique_name then name, and
// Roles from the .NET role claim URI, then role, then roles. A role claim
// may be a single string or an array.
func Decode(token string) (Claims, error) {
	raw := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, raw); err != nil {
		return Claims{}, fmt.Errorf("jwtx: failed to decode token: %w", err)
	}

	claims := Claims{
		Subject:  firstString(raw, "sub", "nameid"),
		Email:    firstString(raw, "email"),
		Username: firstString(raw, "unique_name", "name"),
		Roles:    []string{},
	}

	for _, key := range []string{msRoleClaim, "role", "roles"} {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		claims.Roles = roleValues(value)
		break
	}

	return claims, nil
}

// HasRole reports whether the token carries the named role,
// case-insensitively.
func (c Claims) HasRole(name string) bool {
	for _, role := range c.Roles {
		if strings.EqualFold(role, name) {
			return true
		}
	}
	return false
}

func firstString(raw jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func roleValues(value any) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	case []any:
		roles := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok && s != "" {
				roles = append(roles, s)
			}
		}
		return roles
	default:
		return []string{}
	}
}
