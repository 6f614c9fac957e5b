package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Upstream endpoint paths. The doubled segments are the upstream's routing
// scheme, not a typo.
const (
	loginPath          = "/Account/Account/LogIn"
	getAllUsersPath    = "/Admin/Admin/GetAllUsers"
	createUserPath     = "/Admin/Admin/CreateUserWithRole"
	assignRolePath     = "/Admin/Admin/AssignRoleToUser"
	getAllRolesPath    = "/Admin/Admin/GetAllRoles"
	userStatisticsPath = "/Admin/Admin/GetUserStatistics"
)

// DefaultNegotiateTimeout bounds a whole login or refresh negotiation, all
// encoding attempts included.
const DefaultNegotiateTimeout = 10 * time.Second

// Client is an unauthenticated client for the Brain Hope admin API. It
// performs the login negotiation and creates authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// NegotiateTimeout overrides DefaultNegotiateTimeout when positive.
	NegotiateTimeout time.Duration
}

// NewClient creates a client for the given upstream base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURL returns a copy of the client pointed at a different upstream.
// Used for per-login base URL overrides.
func (c *Client) WithBaseURL(baseURL string) *Client {
	clone := *c
	clone.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &clone
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

func (c *Client) negotiateTimeout() time.Duration {
	if c.NegotiateTimeout > 0 {
		return c.NegotiateTimeout
	}
	return DefaultNegotiateTimeout
}

// Login authenticates with the upstream, probing request encodings until one
// is diagnostic, and normalizes the resulting token payload.
//
// Error taxonomy: *TransportError when nothing completed, ErrAllApproachesFailed
// when nothing was diagnostic, *HTTPError for a completed non-2xx (including
// the 401 that ends the probe), *LoginRejectedError for a 2xx whose body
// reports failure, and ErrResponseFormat for a 2xx success whose token could
// not be located.
func (c *Client) Login(ctx context.Context, email, password string) (TokenInfo, error) {
	status, body, err := c.negotiate(ctx, loginPath, loginAttempts(email, password), acceptLoginStatus)
	if err != nil {
		return TokenInfo{}, err
	}

	if status < 200 || status >= 300 {
		message := extractMessage(body, fmt.Sprintf("Login failed with status: %d", status))
		return TokenInfo{}, &HTTPError{StatusCode: status, Message: message}
	}

	if !LoginSucceeded(body) {
		message := extractMessage(body, "Login failed. Please check your credentials.")
		return TokenInfo{}, &LoginRejectedError{Message: message}
	}

	return ExtractTokenInfo(body)
}

// Refresh exchanges a refresh token for fresh credentials. The upstream has
// no dedicated refresh endpoint; the login endpoint accepts an
// Email/RefreshToken pair. Unlike Login, only a 2xx ends the probe.
func (c *Client) Refresh(ctx context.Context, email, refreshToken string) (TokenInfo, error) {
	if email == "" || refreshToken == "" {
		return TokenInfo{}, ErrNotAuthenticated
	}

	_, body, err := c.negotiate(ctx, loginPath, refreshAttempts(email, refreshToken), acceptSuccessStatus)
	if err != nil {
		return TokenInfo{}, err
	}

	return ExtractTokenInfo(body)
}

// NewSession creates an authenticated session from existing token material,
// for example tokens restored from the session store. onUpdate, when not nil,
// is invoked with the new TokenInfo after a successful refresh so the owner
// can persist it.
func (c *Client) NewSession(email string, info TokenInfo, onUpdate func(TokenInfo)) *Session {
	return &Session{
		client:   c,
		email:    email,
		info:     info,
		onUpdate: onUpdate,
	}
}
