package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/brainhope/console/internal/console/domain"
	"github.com/brainhope/console/internal/console/service"
	"github.com/brainhope/console/pkg/adminapi"
	"github.com/brainhope/console/pkg/httpx"
)

// APIHandler exposes the console's operations as JSON for scripted use.
// It shares the session, services, and error mapping with the HTML
// surface; only the representation differs.
type APIHandler struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Dashboard *service.DashboardService
	Logger    *slog.Logger
}

type apiError struct {
	Error string `json:"error"`
}

type createUserRequest struct {
	UserName        string   `json:"userName"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	NationalID      string   `json:"nationalId"`
	Roles           []string `json:"roles"`
}

type assignRoleRequest struct {
	NationalID string `json:"nationalId"`
	RoleID     string `json:"roleId"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleListUsers godoc
//
//	@Summary		List users
//	@Description	Returns the upstream user directory, optionally narrowed by a search query and role filter
//	@Tags			Users
//	@Produce		json
//	@Param			q		query		string	false	"Search query (name, email or national ID)"
//	@Param			role	query		string	false	"Role name filter"
//	@Success		200		{array}		domain.User
//	@Failure		401		{object}	apiError
//	@Failure		502		{object}	apiError
//	@Router			/api/v1/users [get]
func (h *APIHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("role"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// HandleListRoles godoc
//
//	@Summary		List assignable roles
//	@Description	Returns the upstream role catalogue, falling back to the built-in set when the upstream has none
//	@Tags			Users
//	@Produce		json
//	@Success		200	{array}	domain.Role
//	@Router			/api/v1/roles [get]
func (h *APIHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Users.Roles(r.Context()))
}

// HandleStats godoc
//
//	@Summary		User statistics
//	@Description	Returns user totals split by doctor and patient counts
//	@Tags			Dashboard
//	@Produce		json
//	@Success		200	{object}	domain.Stats
//	@Failure		401	{object}	apiError
//	@Failure		502	{object}	apiError
//	@Router			/api/v1/stats [get]
func (h *APIHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// HandleCreateUser godoc
//
//	@Summary		Create a user
//	@Description	Validates the input locally, then creates the user upstream with the given roles
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createUserRequest	true	"User to create"
//	@Success		201		{object}	messageResponse
//	@Failure		400		{object}	apiError
//	@Failure		401		{object}	apiError
//	@Failure		502		{object}	apiError
//	@Router			/api/v1/users [post]
func (h *APIHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}

	message, err := h.Users.Create(r.Context(), domain.CreateUserInput{
		UserName:        req.UserName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		NationalID:      req.NationalID,
		Roles:           req.Roles,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, messageResponse{Message: message})
}

// HandleAssignRole godoc
//
//	@Summary		Assign a role
//	@Description	Grants the given role to the user identified by national ID
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		assignRoleRequest	true	"Assignment"
//	@Success		200		{object}	messageResponse
//	@Failure		400		{object}	apiError
//	@Failure		401		{object}	apiError
//	@Failure		502		{object}	apiError
//	@Router			/api/v1/roles/assign [post]
func (h *APIHandler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}

	message, err := h.Users.AssignRole(r.Context(), req.NationalID, req.RoleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: message})
}

// writeError maps service failures onto JSON statuses. An expired
// session is cleared so the next call fails fast with 401.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var httpErr *adminapi.HTTPError

	switch {
	case h.Auth.HandleExpired(r.Context(), err), errors.Is(err, adminapi.ErrNotAuthenticated):
		httpx.WriteJSON(w, http.StatusUnauthorized, apiError{Error: "authentication required"})
	case errors.As(err, &verr):
		httpx.WriteJSON(w, http.StatusBadRequest, apiError{Error: verr.Message})
	case errors.As(err, &httpErr):
		h.Logger.Warn("upstream error", "status", httpErr.StatusCode, "message", httpErr.Message)
		httpx.WriteJSON(w, http.StatusBadGateway, apiError{Error: httpErr.Message})
	default:
		h.Logger.Error("request failed", "error", err)
		httpx.WriteJSON(w, http.StatusBadGateway, apiError{Error: err.Error()})
	}
}
