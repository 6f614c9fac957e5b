package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/brainhope/console/internal/console/service"
	"github.com/brainhope/console/internal/console/store"
	"github.com/brainhope/console/pkg/httpx"
	"github.com/brainhope/console/pkg/slogx"

	_ "github.com/brainhope/console/api/console" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	views        *views

	store store.Store

	AuthService      *service.AuthService
	SessionStore     *service.SessionStore
	UserService      *service.UserService
	DashboardService *service.DashboardService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		views:        parseViews(),
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPages()
	r.registerAPI()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Brain Hope Console API
//	@version		0.1.0
//	@description	Administration console for the Brain Hope platform. Proxies a single
//	@description	operator session against the upstream admin API: user directory,
//	@description	user creation, role assignment, and user statistics.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{
		Auth:     r.AuthService,
		Sessions: r.SessionStore,
		Views:    r.views,
		Logger:   r.logger,
	}

	// GET /login - lenient rate limit (just renders the form)
	r.Mux.Handle("GET /login",
		httpx.Chain(http.HandlerFunc(login.HandleGet),
			RedirectIfAuthed(r.SessionStore),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /login - strict rate limit by IP + email to slow brute force
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(login.HandlePost),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	logout := &LogoutHandler{Auth: r.AuthService, Logger: r.logger}
	r.Mux.Handle("POST /logout",
		httpx.Chain(logout,
			RequireSession(r.SessionStore),
		),
	)
}

func (r *Router) registerPages() {
	secured := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			RequireSession(r.SessionStore),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}

	dashboard := &DashboardHandler{
		Auth:      r.AuthService,
		Dashboard: r.DashboardService,
		Views:     r.views,
		Logger:    r.logger,
	}
	r.Mux.Handle("GET /{$}", secured(dashboard))

	users := &UsersHandler{
		Auth:   r.AuthService,
		Users:  r.UserService,
		Views:  r.views,
		Logger: r.logger,
	}
	r.Mux.Handle("GET /users", secured(users))

	create := &CreateUserHandler{
		Auth:   r.AuthService,
		Users:  r.UserService,
		Views:  r.views,
		Logger: r.logger,
	}
	r.Mux.Handle("GET /users/new", secured(http.HandlerFunc(create.HandleGet)))
	r.Mux.Handle("POST /users", httpx.Chain(http.HandlerFunc(create.HandlePost),
		RequireSession(r.SessionStore),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	))

	assign := &AssignRoleHandler{
		Auth:   r.AuthService,
		Users:  r.UserService,
		Logger: r.logger,
	}
	r.Mux.Handle("POST /users/assign-role", httpx.Chain(assign,
		RequireSession(r.SessionStore),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	))
}

func (r *Router) registerAPI() {
	api := &APIHandler{
		Auth:      r.AuthService,
		Users:     r.UserService,
		Dashboard: r.DashboardService,
		Logger:    r.logger,
	}

	secured := func(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(h,
			RequireSession(r.SessionStore),
			httpx.RateLimitByIP(limit),
		)
	}

	r.Mux.Handle("GET /api/v1/users", secured(api.HandleListUsers, httpx.LenientLimit))
	r.Mux.Handle("GET /api/v1/roles", secured(api.HandleListRoles, httpx.LenientLimit))
	r.Mux.Handle("GET /api/v1/stats", secured(api.HandleStats, httpx.LenientLimit))
	r.Mux.Handle("POST /api/v1/users", secured(api.HandleCreateUser, httpx.ModerateLimit))
	r.Mux.Handle("POST /api/v1/roles/assign", secured(api.HandleAssignRole, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
