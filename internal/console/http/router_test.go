package http_test

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	consolehttp "github.com/brainhope/console/internal/console/http"
	"github.com/brainhope/console/internal/console/service"
	"github.com/brainhope/console/internal/console/store/drivers/sqlite"
	"github.com/brainhope/console/pkg/adminapi"
)

// newConsole stands up the full router against a stub upstream and a
// fresh sqlite store, returning the console server.
func newConsole(t *testing.T, upstream *httptest.Server) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := &service.SessionStore{Sessions: st.Sessions()}
	auth := &service.AuthService{
		Client:   adminapi.NewClient(upstream.URL),
		Sessions: sessions,
		Logger:   logger,
	}

	router := consolehttp.NewRouter("test", st, logger)
	router.AuthService = auth
	router.SessionStore = sessions
	router.UserService = &service.UserService{Auth: auth, Logger: logger}
	router.DashboardService = &service.DashboardService{Auth: auth, Logger: logger}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// noRedirects builds a client that reports redirects instead of
// following them, so tests can assert on Location headers.
func noRedirects() *stdhttp.Client {
	return &stdhttp.Client{
		CheckRedirect: func(req *stdhttp.Request, via []*stdhttp.Request) error {
			return stdhttp.ErrUseLastResponse
		},
	}
}

func adminUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	encode := func(v any) string {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	token := encode(map[string]any{"alg": "none", "typ": "JWT"}) + "." +
		encode(map[string]any{"sub": "op-1", "role": "Admin"}) + "."

	mux := stdhttp.NewServeMux()
	mux.HandleFunc("/Account/Account/LogIn", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"isSuccess": true,
			"response": map[string]any{
				"accessToken":     map[string]any{"token": token},
				"refreshToken":    map[string]any{"token": "refresh-1"},
				"expiryTokenDate": "2099-01-01T00:00:00",
			},
		})
	})
	mux.HandleFunc("/Admin/Admin/GetAllUsers", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"isSuccess": true,
			"response": []any{
				map[string]any{"userName": "dr_house", "email": "house@clinic.example", "nationalId": "11111111111111", "roles": []any{"Doctor"}},
			},
		})
	})
	mux.HandleFunc("/Admin/Admin/GetAllRoles", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/Admin/Admin/GetUserStatistics", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"totalUsers": 1, "doctorCount": 1, "patientCount": 0})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, console *httptest.Server) *stdhttp.Cookie {
	t.Helper()

	resp, err := noRedirects().PostForm(console.URL+"/login", url.Values{
		"email":    {"ops@brainhope.example"},
		"password": {"hunter2"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	for _, c := range resp.Cookies() {
		if c.Name == "console_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestRouterRedirectSurface(t *testing.T) {
	upstream := adminUpstream(t)
	console := newConsole(t, upstream)

	t.Run("unauthenticated page requests redirect to login", func(t *testing.T) {
		for _, path := range []string{"/", "/users", "/users/new"} {
			resp, err := noRedirects().Get(console.URL + path)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, stdhttp.StatusFound, resp.StatusCode, path)
			require.Equal(t, "/login", resp.Header.Get("Location"), path)
		}
	})

	t.Run("unauthenticated API requests get JSON 401", func(t *testing.T) {
		resp, err := noRedirects().Get(console.URL + "/api/v1/users")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	})

	t.Run("login page is public", func(t *testing.T) {
		resp, err := noRedirects().Get(console.URL + "/login")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	})

	t.Run("health probes are public", func(t *testing.T) {
		for _, path := range []string{"/livez", "/readyz"} {
			resp, err := noRedirects().Get(console.URL + path)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, stdhttp.StatusOK, resp.StatusCode, path)
		}
	})
}

func TestRouterAuthenticatedFlow(t *testing.T) {
	upstream := adminUpstream(t)
	console := newConsole(t, upstream)
	cookie := login(t, console)

	get := func(path string) *stdhttp.Response {
		req, err := stdhttp.NewRequest(stdhttp.MethodGet, console.URL+path, nil)
		require.NoError(t, err)
		req.AddCookie(cookie)
		resp, err := noRedirects().Do(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("authenticated login page redirects to dashboard", func(t *testing.T) {
		resp := get("/login")
		defer resp.Body.Close()
		require.Equal(t, stdhttp.StatusFound, resp.StatusCode)
		require.Equal(t, "/", resp.Header.Get("Location"))
	})

	t.Run("dashboard renders the statistics", func(t *testing.T) {
		resp := get("/")
		defer resp.Body.Close()
		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "Total users")
		require.Contains(t, string(body), "dr_house")
	})

	t.Run("users page lists the directory", func(t *testing.T) {
		resp := get("/users")
		defer resp.Body.Close()
		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "house@clinic.example")
	})

	t.Run("JSON API serves users", func(t *testing.T) {
		resp := get("/api/v1/users")
		defer resp.Body.Close()
		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

		var users []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
		require.Len(t, users, 1)
	})

	t.Run("forged cookie is rejected", func(t *testing.T) {
		req, err := stdhttp.NewRequest(stdhttp.MethodGet, console.URL+"/", nil)
		require.NoError(t, err)
		req.AddCookie(&stdhttp.Cookie{Name: "console_session", Value: "forged"})
		resp, err := noRedirects().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, stdhttp.StatusFound, resp.StatusCode)
	})

	t.Run("logout clears the session", func(t *testing.T) {
		req, err := stdhttp.NewRequest(stdhttp.MethodPost, console.URL+"/logout", strings.NewReader(""))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		resp, err := noRedirects().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, stdhttp.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/login", resp.Header.Get("Location"))

		after := get("/")
		after.Body.Close()
		require.Equal(t, stdhttp.StatusFound, after.StatusCode)
	})
}

func TestRouterLoginFailureMessages(t *testing.T) {
	t.Run("rejected credentials render the upstream message", func(t *testing.T) {
		mux := stdhttp.NewServeMux()
		mux.HandleFunc("/Account/Account/LogIn", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"isSuccess": false})
		})
		upstream := httptest.NewServer(mux)
		t.Cleanup(upstream.Close)
		console := newConsole(t, upstream)

		resp, err := noRedirects().PostForm(console.URL+"/login", url.Values{
			"email":    {"ops@brainhope.example"},
			"password": {"wrong"},
		})
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "Login failed. Please check your credentials.")
	})

	t.Run("non-admin account is told about missing privileges", func(t *testing.T) {
		encode := func(v any) string {
			raw, _ := json.Marshal(v)
			return base64.RawURLEncoding.EncodeToString(raw)
		}
		patientToken := encode(map[string]any{"alg": "none"}) + "." + encode(map[string]any{"role": "Patient"}) + "."

		mux := stdhttp.NewServeMux()
		mux.HandleFunc("/Account/Account/LogIn", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"isSuccess": true,
				"response":  map[string]any{"accessToken": map[string]any{"token": patientToken}},
			})
		})
		upstream := httptest.NewServer(mux)
		t.Cleanup(upstream.Close)
		console := newConsole(t, upstream)

		resp, err := noRedirects().PostForm(console.URL+"/login", url.Values{
			"email":    {"patient@brainhope.example"},
			"password": {"hunter2"},
		})
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "Access denied. You do not have admin privileges.")
	})
}
