package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
)

// Session is an authenticated handle on the admin API. It injects the bearer
// token on every request and recovers from a rejected token with exactly one
// refresh followed by one retry; a second 401 surfaces as
// ErrAuthenticationExpired without another refresh.
type Session struct {
	client *Client

	mu       sync.Mutex
	email    string
	info     TokenInfo
	onUpdate func(TokenInfo)
}

// TokenInfo returns a snapshot of the current token material.
func (s *Session) TokenInfo() TokenInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Do performs an authenticated request. body may be nil, a *FormBody, or any
// JSON-marshalable value. The caller owns the response body on success.
func (s *Session) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return s.do(ctx, method, path, body, false)
}

// do carries the retried flag so a refreshed request that still gets 401 is
// terminal. The flag is what prevents a retry loop.
func (s *Session) do(ctx context.Context, method, path string, body any, retried bool) (*http.Response, error) {
	s.mu.Lock()
	token := s.info.AccessToken
	s.mu.Unlock()

	if token == "" {
		return nil, ErrNotAuthenticated
	}

	req, err := s.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, newTransportError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		if retried {
			return nil, ErrAuthenticationExpired
		}
		if err := s.refresh(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationExpired, err)
		}
		return s.do(ctx, method, path, body, true)
	}

	return resp, nil
}

func (s *Session) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	contentType := ""

	switch v := body.(type) {
	case nil:
	case *FormBody:
		reader = bytes.NewReader(v.Bytes)
		contentType = v.ContentType
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "*/*")
	return req, nil
}

// refresh exchanges the stored refresh token under the session mutex and
// notifies the owner of the new material.
func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	email := s.email
	refreshToken := s.info.RefreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		return errors.New("no refresh token available")
	}

	info, err := s.client.Refresh(ctx, email, refreshToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// A refresh response without a new refresh token keeps the old one.
	if info.RefreshToken == "" {
		info.RefreshToken = s.info.RefreshToken
	}
	s.info = info
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(info)
	}
	return nil
}

// FormBody is a pre-encoded multipart request body.
type FormBody struct {
	Bytes       []byte
	ContentType string
}

// NewFormBody encodes ordered fields and an optional file part into a
// multipart body.
func NewFormBody(fields []FormField, fileField, fileName string, file []byte) (*FormBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, err
		}
	}

	if len(file) > 0 {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return &FormBody{Bytes: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}

// FormField is an ordered multipart field. Repeated names are allowed; the
// upstream binds repeated Roles fields to a list.
type FormField struct {
	Name  string
	Value string
}
