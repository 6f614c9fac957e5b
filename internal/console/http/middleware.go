package http

import (
	"net/http"
	"strings"

	"github.com/brainhope/console/internal/console/service"
	"github.com/brainhope/console/pkg/httpx"
)

const sessionCookieName = "console_session"

// setSessionCookie hands the browser its session token. The cookie is
// host-only and HttpOnly; Secure is left to the deployment's proxy.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// hasSession reports whether the request carries a cookie matching the
// stored fingerprint and the stored token has not expired.
func hasSession(r *http.Request, sessions *service.SessionStore) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	ok, err := sessions.MatchCookie(r.Context(), cookie.Value)
	if err != nil || !ok {
		return false
	}
	valid, err := sessions.IsValid(r.Context())
	return err == nil && valid
}

// RequireSession gates a handler behind the operator session. Browsers
// are redirected to the login page; API clients get a JSON 401.
func RequireSession(sessions *service.SessionStore) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasSession(r, sessions) {
				next.ServeHTTP(w, r)
				return
			}
			if strings.HasPrefix(r.URL.Path, "/api/") {
				httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
		})
	}
}

// RedirectIfAuthed sends an already-authenticated operator from the
// login page straight to the dashboard.
func RedirectIfAuthed(sessions *service.SessionStore) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && hasSession(r, sessions) {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
