package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brainhope/console/internal/console/domain"
	"github.com/brainhope/console/internal/console/store"
	"github.com/brainhope/console/pkg/cryptox"
)

// SessionStore persists the operator's upstream session in the key/value
// store. Tokens are sealed at rest; the cookie itself never leaves the
// browser, only its fingerprint is stored for comparison.
type SessionStore struct {
	Sessions store.Sessions
}

// Save writes the session material, sealing both tokens. An empty token
// value is stored as an empty string so Current can distinguish "never
// logged in" from "logged in without a refresh token".
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	access, err := cryptox.Seal(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	refresh := ""
	if sess.RefreshToken != "" {
		refresh, err = cryptox.Seal(sess.RefreshToken)
		if err != nil {
			return fmt.Errorf("seal refresh token: %w", err)
		}
	}

	pairs := map[string]string{
		store.KeyAccessToken:  access,
		store.KeyRefreshToken: refresh,
		store.KeyTokenExpiry:  sess.TokenExpiry,
		store.KeyUserEmail:    sess.UserEmail,
	}
	for key, value := range pairs {
		if err := s.Sessions.Set(ctx, key, value); err != nil {
			return fmt.Errorf("persist %s: %w", key, err)
		}
	}
	return nil
}

// Current loads the stored session. A store with no session material
// yields a zero session, not an error.
func (s *SessionStore) Current(ctx context.Context) (domain.Session, error) {
	var sess domain.Session

	sealed, err := s.get(ctx, store.KeyAccessToken)
	if err != nil {
		return domain.Session{}, err
	}
	if sealed != "" {
		sess.AccessToken, err = cryptox.Open(sealed)
		if err != nil {
			return domain.Session{}, fmt.Errorf("unseal access token: %w", err)
		}
	}

	sealed, err = s.get(ctx, store.KeyRefreshToken)
	if err != nil {
		return domain.Session{}, err
	}
	if sealed != "" {
		sess.RefreshToken, err = cryptox.Open(sealed)
		if err != nil {
			return domain.Session{}, fmt.Errorf("unseal refresh token: %w", err)
		}
	}

	if sess.TokenExpiry, err = s.get(ctx, store.KeyTokenExpiry); err != nil {
		return domain.Session{}, err
	}
	if sess.UserEmail, err = s.get(ctx, store.KeyUserEmail); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// IsValid reports whether a non-expired session is currently stored.
func (s *SessionStore) IsValid(ctx context.Context) (bool, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	return sess.Valid(time.Now()), nil
}

// Clear removes all session material: tokens, identity, the base URL
// override, and the cookie fingerprint.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.Sessions.Delete(ctx,
		store.KeyAccessToken,
		store.KeyRefreshToken,
		store.KeyTokenExpiry,
		store.KeyUserEmail,
		store.KeyTempAPIBaseURL,
		store.KeyCookieFingerprint,
	)
}

// SetCookieFingerprint records the fingerprint of the browser cookie that
// is allowed to use the stored session.
func (s *SessionStore) SetCookieFingerprint(ctx context.Context, cookieToken string) error {
	return s.Sessions.Set(ctx, store.KeyCookieFingerprint, cryptox.FingerprintToken(cookieToken))
}

// MatchCookie reports whether the presented cookie token matches the
// stored fingerprint. A missing fingerprint never matches.
func (s *SessionStore) MatchCookie(ctx context.Context, cookieToken string) (bool, error) {
	stored, err := s.get(ctx, store.KeyCookieFingerprint)
	if err != nil {
		return false, err
	}
	if stored == "" || cookieToken == "" {
		return false, nil
	}
	return stored == cryptox.FingerprintToken(cookieToken), nil
}

// TempBaseURL returns the operator-supplied upstream base URL override,
// or "" when none is set.
func (s *SessionStore) TempBaseURL(ctx context.Context) (string, error) {
	return s.get(ctx, store.KeyTempAPIBaseURL)
}

// SetTempBaseURL stores (or, with "", clears) the upstream override.
func (s *SessionStore) SetTempBaseURL(ctx context.Context, baseURL string) error {
	if baseURL == "" {
		return s.Sessions.Delete(ctx, store.KeyTempAPIBaseURL)
	}
	return s.Sessions.Set(ctx, store.KeyTempAPIBaseURL, baseURL)
}

func (s *SessionStore) get(ctx context.Context, key string) (string, error) {
	value, err := s.Sessions.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return value, nil
}
