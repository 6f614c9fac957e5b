package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brainhope/console/internal/console/domain"
	"github.com/brainhope/console/pkg/adminapi"
	"github.com/brainhope/console/pkg/cryptox"
	"github.com/brainhope/console/pkg/jwtx"
)

// ErrAccessDenied is returned when credentials are valid but the account
// does not carry the admin role.
var ErrAccessDenied = errors.New("access denied: account lacks admin privileges")

// AuthService negotiates logins against the upstream admin API and keeps
// the resulting session material in the local store. The console is a
// single-operator tool, so there is exactly one session at a time.
type AuthService struct {
	Client   *adminapi.Client
	Sessions *SessionStore
	Logger   *slog.Logger
}

// Login authenticates against the upstream, verifies the admin role from
// the access token claims, and persists the session. It returns the fresh
// cookie token the HTTP layer should hand to the browser.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	client, err := s.clientFor(ctx)
	if err != nil {
		return "", err
	}

	info, err := client.Login(ctx, email, password)
	if err != nil {
		return "", err
	}

	claims, err := jwtx.Decode(info.AccessToken)
	if err != nil {
		// An opaque token cannot prove the admin role.
		s.Logger.Warn("access token is not a decodable JWT", "error", err)
		return "", ErrAccessDenied
	}
	if !claims.HasRole("admin") {
		s.Logger.Info("login rejected: missing admin role", "email", email, "roles", claims.Roles)
		return "", ErrAccessDenied
	}

	sess := domain.Session{
		AccessToken:  info.AccessToken,
		RefreshToken: info.RefreshToken,
		TokenExpiry:  info.Expiry,
		UserEmail:    email,
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}

	cookieToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("generate cookie token: %w", err)
	}
	if err := s.Sessions.SetCookieFingerprint(ctx, cookieToken); err != nil {
		return "", fmt.Errorf("persist cookie fingerprint: %w", err)
	}

	s.Logger.Info("operator logged in", "email", email)
	return cookieToken, nil
}

// Logout drops the stored session. It never fails on a missing session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.Sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.Logger.Info("operator logged out")
	return nil
}

// API returns an authenticated upstream session built from the stored
// token material. Refreshed tokens are written back to the store so the
// next request picks them up.
func (s *AuthService) API(ctx context.Context) (*adminapi.Session, error) {
	sess, err := s.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Exists() {
		return nil, adminapi.ErrNotAuthenticated
	}

	client, err := s.clientFor(ctx)
	if err != nil {
		return nil, err
	}

	info := adminapi.TokenInfo{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Expiry:       sess.TokenExpiry,
	}
	email := sess.UserEmail

	return client.NewSession(email, info, func(updated adminapi.TokenInfo) {
		saveErr := s.Sessions.Save(context.Background(), domain.Session{
			AccessToken:  updated.AccessToken,
			RefreshToken: updated.RefreshToken,
			TokenExpiry:  updated.Expiry,
			UserEmail:    email,
		})
		if saveErr != nil {
			s.Logger.Error("failed to persist refreshed tokens", "error", saveErr)
		}
	}), nil
}

// HandleExpired clears the stored session when an upstream call reports
// that authentication can no longer be recovered, and says whether it did.
func (s *AuthService) HandleExpired(ctx context.Context, err error) bool {
	if !errors.Is(err, adminapi.ErrAuthenticationExpired) {
		return false
	}
	if clearErr := s.Sessions.Clear(ctx); clearErr != nil {
		s.Logger.Error("failed to clear expired session", "error", clearErr)
	}
	return true
}

// clientFor returns the upstream client, rebased onto the operator's
// temporary base URL override when one is stored.
func (s *AuthService) clientFor(ctx context.Context) (*adminapi.Client, error) {
	override, err := s.Sessions.TempBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	if override == "" {
		return s.Client, nil
	}
	return s.Client.WithBaseURL(override), nil
}
