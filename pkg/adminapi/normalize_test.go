package adminapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractTokenInfo(t *testing.T) {
	t.Parallel()

	t.Run("nested response envelope", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{
			"isSuccess": true,
			"response": {
				"accessToken": {"token": "header.payload.sig", "expiryTokenDate": "2026-09-01T00:00:00Z"},
				"refreshToken": {"token": "refresh-1"}
			}
		}`)

		info, err := ExtractTokenInfo(body)
		require.NoError(t, err)
		require.Equal(t, "header.payload.sig", info.AccessToken)
		require.Equal(t, "refresh-1", info.RefreshToken)
		require.Equal(t, "2026-09-01T00:00:00Z", info.Expiry)
	})

	t.Run("top level accessToken string", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"accessToken": "a.b.c", "refreshToken": "refresh-2", "expiryDate": "2026-09-01"}`)

		info, err := ExtractTokenInfo(body)
		require.NoError(t, err)
		require.Equal(t, "a.b.c", info.AccessToken)
		require.Equal(t, "refresh-2", info.RefreshToken)
		require.Equal(t, "2026-09-01", info.Expiry)
	})

	t.Run("top level accessToken object", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"accessToken": {"token": "a.b.c"}, "refreshToken": {"token": "refresh-3"}, "expiry": "2026-09-01"}`)

		info, err := ExtractTokenInfo(body)
		require.NoError(t, err)
		require.Equal(t, "a.b.c", info.AccessToken)
		require.Equal(t, "refresh-3", info.RefreshToken)
		require.Equal(t, "2026-09-01", info.Expiry)
	})

	t.Run("bare token field", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"token": "a.b.c", "refreshToken": "refresh-4"}`)

		info, err := ExtractTokenInfo(body)
		require.NoError(t, err)
		require.Equal(t, "a.b.c", info.AccessToken)
		require.Equal(t, "refresh-4", info.RefreshToken)
		require.Empty(t, info.Expiry)
	})

	t.Run("data envelope", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"data": {"token": "a.b.c", "refreshToken": "refresh-5", "expiryDate": "2026-09-01"}}`)

		info, err := ExtractTokenInfo(body)
		require.NoError(t, err)
		require.Equal(t, "a.b.c", info.AccessToken)
		require.Equal(t, "refresh-5", info.RefreshToken)
	})

	t.Run("body is the token itself", func(t *testing.T) {
		t.Parallel()

		info, err := ExtractTokenInfo([]byte(`"header.payload.sig"`))
		require.NoError(t, err)
		require.Equal(t, "header.payload.sig", info.AccessToken)
		require.Empty(t, info.RefreshToken)
	})

	t.Run("nested envelope wins over siblings", func(t *testing.T) {
		t.Parallel()

		// A body matching both shape 1 and shape 3 must resolve as shape 1.
		body := []byte(`{
			"response": {"accessToken": {"token": "nested.a.b"}},
			"token": "flat.a.b"
		}`)

		info, err := ExtractTokenInfo(body)
		require.NoError(t, err)
		require.Equal(t, "nested.a.b", info.AccessToken)
	})

	t.Run("missing refresh token is not an error", func(t *testing.T) {
		t.Parallel()

		info, err := ExtractTokenInfo([]byte(`{"accessToken": "a.b.c"}`))
		require.NoError(t, err)
		require.Equal(t, "a.b.c", info.AccessToken)
		require.Empty(t, info.RefreshToken)
		require.Empty(t, info.Expiry)
	})

	t.Run("unrecognised shapes", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"empty object":           `{}`,
			"unrelated fields":       `{"userName": "x"}`,
			"non jwt string":         `"not-a-token"`,
			"array body":             `[1, 2]`,
			"not json":               `<html>`,
			"empty nested token":     `{"response": {"accessToken": {"token": ""}}}`,
			"success flag but empty": `{"isSuccess": true}`,
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := ExtractTokenInfo([]byte(body))
				require.ErrorIs(t, err, ErrResponseFormat)
			})
		}
	})
}

func TestLoginSucceeded(t *testing.T) {
	t.Parallel()

	succeeds := map[string]string{
		"explicit isSuccess":     `{"isSuccess": true}`,
		"explicit success":       `{"success": true}`,
		"nested accessToken":     `{"response": {"accessToken": {"token": "a.b.c"}}}`,
		"top level accessToken":  `{"accessToken": "a.b.c"}`,
		"bare token":             `{"token": "a.b.c"}`,
		"data token":             `{"data": {"token": "a.b.c"}}`,
		"jwt string body":        `"a.b.c"`,
	}
	for name, body := range succeeds {
		t.Run(name, func(t *testing.T) {
			require.True(t, LoginSucceeded([]byte(body)))
		})
	}

	fails := map[string]string{
		"failure payload":  `{"isSuccess": false, "message": "bad credentials"}`,
		"empty object":     `{}`,
		"non jwt string":   `"nope"`,
		"not json":         `oops`,
	}
	for name, body := range fails {
		t.Run(name, func(t *testing.T) {
			require.False(t, LoginSucceeded([]byte(body)))
		})
	}
}

func TestUnwrapList(t *testing.T) {
	t.Parallel()

	t.Run("bare array", func(t *testing.T) {
		records, err := UnwrapList([]byte(`[{"userName": "a"}, {"userName": "b"}]`))
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Equal(t, "a", records[0].Str("userName"))
	})

	t.Run("success envelope", func(t *testing.T) {
		records, err := UnwrapList([]byte(`{"isSuccess": true, "response": [{"userName": "a"}]}`))
		require.NoError(t, err)
		require.Len(t, records, 1)
	})

	t.Run("plain envelope", func(t *testing.T) {
		records, err := UnwrapList([]byte(`{"response": []}`))
		require.NoError(t, err)
		require.Empty(t, records)
	})

	t.Run("unrecognised", func(t *testing.T) {
		_, err := UnwrapList([]byte(`{"users": []}`))
		require.ErrorIs(t, err, ErrResponseFormat)
	})
}

func TestUnwrapObject(t *testing.T) {
	t.Parallel()

	t.Run("enveloped", func(t *testing.T) {
		rec, err := UnwrapObject([]byte(`{"isSuccess": true, "response": {"totalUsers": 7}}`))
		require.NoError(t, err)
		require.Equal(t, 7, rec.Int("totalUsers"))
	})

	t.Run("flat", func(t *testing.T) {
		rec, err := UnwrapObject([]byte(`{"totalUsers": 3}`))
		require.NoError(t, err)
		require.Equal(t, 3, rec.Int("totalUsers"))
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := UnwrapObject([]byte(`[1]`))
		require.ErrorIs(t, err, ErrResponseFormat)
	})
}
