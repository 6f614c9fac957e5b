package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/brainhope/console/internal/console/service"
	"github.com/brainhope/console/pkg/adminapi"
)

// LoginHandler renders the sign-in form and drives the upstream login.
type LoginHandler struct {
	Auth     *service.AuthService
	Sessions *service.SessionStore
	Views    *views
	Logger   *slog.Logger
}

type loginPage struct {
	Authed     bool
	Error      string
	Email      string
	APIBaseURL string
}

func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	override, err := h.Sessions.TempBaseURL(r.Context())
	if err != nil {
		h.Logger.Error("failed to load base URL override", "error", err)
	}
	render(w, h.Logger, h.Views.login, http.StatusOK, loginPage{APIBaseURL: override})
}

func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	override := r.PostFormValue("api_base_url")

	if err := h.Sessions.SetTempBaseURL(r.Context(), override); err != nil {
		h.Logger.Error("failed to store base URL override", "error", err)
	}

	cookieToken, err := h.Auth.Login(r.Context(), email, password)
	if err != nil {
		h.Logger.Info("login failed", "email", email, "error", err)
		render(w, h.Logger, h.Views.login, http.StatusUnauthorized, loginPage{
			Error:      loginErrorMessage(err),
			Email:      email,
			APIBaseURL: override,
		})
		return
	}

	setSessionCookie(w, cookieToken)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loginErrorMessage maps login failures to operator-facing text. The
// upstream's own rejection message wins when it has one.
func loginErrorMessage(err error) string {
	var (
		transport *adminapi.TransportError
		rejected  *adminapi.LoginRejectedError
		httpErr   *adminapi.HTTPError
	)
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		return "Access denied. You do not have admin privileges."
	case errors.Is(err, adminapi.ErrResponseFormat):
		return "Login successful but token format is invalid."
	case errors.As(err, &transport):
		if transport.Timeout {
			return "Connection timed out. The server is taking too long to respond."
		}
		return "Connection error: " + transport.Err.Error()
	case errors.As(err, &rejected):
		return rejected.Message
	case errors.As(err, &httpErr):
		return httpErr.Message
	default:
		return "Login failed. Please check your credentials."
	}
}

// LogoutHandler drops the stored session and the browser cookie.
type LogoutHandler struct {
	Auth   *service.AuthService
	Logger *slog.Logger
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context()); err != nil {
		h.Logger.Error("logout failed", "error", err)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
