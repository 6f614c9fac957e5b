package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/brainhope/console/internal/console/domain"
	"github.com/brainhope/console/internal/console/service"
)

// maxUploadSize caps the in-memory portion of multipart create-user
// requests, profile photo included.
const maxUploadSize = 8 << 20

// UsersHandler renders the user directory with search and role filter.
type UsersHandler struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Views  *views
	Logger *slog.Logger
}

type usersPage struct {
	Authed     bool
	Error      string
	Flash      string
	Query      string
	RoleFilter string
	Roles      []domain.Role
	Users      []domain.User
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	roleFilter := r.URL.Query().Get("role")

	page := usersPage{
		Authed:     true,
		Flash:      r.URL.Query().Get("flash"),
		Error:      r.URL.Query().Get("error"),
		Query:      query,
		RoleFilter: roleFilter,
		Roles:      h.Users.Roles(r.Context()),
	}

	users, err := h.Users.List(r.Context(), query, roleFilter)
	if err != nil {
		if h.Auth.HandleExpired(r.Context(), err) {
			clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.Logger.Error("failed to list users", "error", err)
		page.Error = "Could not load users from the server."
	} else {
		page.Users = users
	}

	render(w, h.Logger, h.Views.users, http.StatusOK, page)
}

// CreateUserHandler renders the creation form and submits it upstream.
type CreateUserHandler struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Views  *views
	Logger *slog.Logger
}

type createUserPage struct {
	Authed bool
	Error  string
	Roles  []domain.Role
	Form   domain.CreateUserInput
}

func (h *CreateUserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	render(w, h.Logger, h.Views.createUser, http.StatusOK, createUserPage{
		Authed: true,
		Roles:  h.Users.Roles(r.Context()),
	})
}

func (h *CreateUserHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	input := domain.CreateUserInput{
		UserName:        r.PostFormValue("user_name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		NationalID:      r.PostFormValue("national_id"),
		Roles:           r.PostForm["roles"],
	}

	if file, header, err := r.FormFile("profile_photo"); err == nil {
		photo, readErr := io.ReadAll(file)
		_ = file.Close()
		if readErr != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		input.Photo = photo
		input.PhotoName = header.Filename
	}

	message, err := h.Users.Create(r.Context(), input)
	if err != nil {
		if h.Auth.HandleExpired(r.Context(), err) {
			clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.Logger.Info("create user failed", "email", input.Email, "error", err)
		render(w, h.Logger, h.Views.createUser, createUserStatus(err), createUserPage{
			Authed: true,
			Error:  err.Error(),
			Roles:  h.Users.Roles(r.Context()),
			Form:   input,
		})
		return
	}

	http.Redirect(w, r, "/users?flash="+url.QueryEscape(message), http.StatusSeeOther)
}

func createUserStatus(err error) int {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// AssignRoleHandler grants a role from the users page and bounces back
// to it with the outcome.
type AssignRoleHandler struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Logger *slog.Logger
}

func (h *AssignRoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	nationalID := r.PostFormValue("national_id")
	roleID := r.PostFormValue("role_id")

	message, err := h.Users.AssignRole(r.Context(), nationalID, roleID)
	if err != nil {
		if h.Auth.HandleExpired(r.Context(), err) {
			clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.Logger.Info("assign role failed", "national_id", nationalID, "error", err)
		http.Redirect(w, r, "/users?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/users?flash="+url.QueryEscape(message), http.StatusSeeOther)
}
