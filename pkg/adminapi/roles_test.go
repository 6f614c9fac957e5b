package adminapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func record(t *testing.T, raw string) Record {
	t.Helper()
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestExtractRoles(t *testing.T) {
	t.Parallel()

	t.Run("roles array of strings", func(t *testing.T) {
		roles := ExtractRoles(record(t, `{"roles": ["Admin", "Doctor"]}`))
		require.Equal(t, []string{"Admin", "Doctor"}, roles)
	})

	t.Run("roles array of objects", func(t *testing.T) {
		roles := ExtractRoles(record(t, `{"roles": [{"name": "Admin"}, {"roleName": "Doctor"}, {"id": "3"}]}`))
		require.Equal(t, []string{"Admin", "Doctor", "3"}, roles)
	})

	t.Run("single role string", func(t *testing.T) {
		roles := ExtractRoles(record(t, `{"role": "Patient"}`))
		require.Equal(t, []string{"Patient"}, roles)
	})

	t.Run("single role object", func(t *testing.T) {
		roles := ExtractRoles(record(t, `{"role": {"roleName": "Doctor"}}`))
		require.Equal(t, []string{"Doctor"}, roles)
	})

	t.Run("roleName property", func(t *testing.T) {
		roles := ExtractRoles(record(t, `{"roleName": "Admin"}`))
		require.Equal(t, []string{"Admin"}, roles)
	})

	t.Run("userRoles join records", func(t *testing.T) {
		roles := ExtractRoles(record(t, `{"userRoles": [{"role": {"name": "Admin"}}, {"name": "Doctor"}, "Patient"]}`))
		require.Equal(t, []string{"Admin", "Doctor", "Patient"}, roles)
	})

	t.Run("fallback properties", func(t *testing.T) {
		t.Run("roleNames array", func(t *testing.T) {
			roles := ExtractRoles(record(t, `{"roleNames": ["Admin"]}`))
			require.Equal(t, []string{"Admin"}, roles)
		})
		t.Run("userRole string", func(t *testing.T) {
			roles := ExtractRoles(record(t, `{"userRole": "Doctor"}`))
			require.Equal(t, []string{"Doctor"}, roles)
		})
	})

	t.Run("roles wins over role", func(t *testing.T) {
		roles := ExtractRoles(record(t, `{"roles": ["Admin"], "role": "Doctor"}`))
		require.Equal(t, []string{"Admin"}, roles)
	})

	t.Run("empty entries dropped", func(t *testing.T) {
		roles := ExtractRoles(record(t, `{"roles": ["Admin", "", {"id": ""}]}`))
		require.Equal(t, []string{"Admin"}, roles)
	})

	t.Run("no role information", func(t *testing.T) {
		require.Empty(t, ExtractRoles(record(t, `{"userName": "x"}`)))
	})

	t.Run("nil record", func(t *testing.T) {
		require.Empty(t, ExtractRoles(nil))
	})
}

func TestRoleFromRecord(t *testing.T) {
	t.Parallel()

	t.Run("name preferred", func(t *testing.T) {
		role := RoleFromRecord(record(t, `{"id": "1", "name": "Admin", "roleName": "Other"}`))
		require.Equal(t, Role{ID: "1", Name: "Admin"}, role)
	})

	t.Run("roleName fallback", func(t *testing.T) {
		role := RoleFromRecord(record(t, `{"id": "2", "roleName": "Doctor"}`))
		require.Equal(t, Role{ID: "2", Name: "Doctor"}, role)
	})

	t.Run("id fallback", func(t *testing.T) {
		role := RoleFromRecord(record(t, `{"id": "3"}`))
		require.Equal(t, Role{ID: "3", Name: "3"}, role)
	})
}
