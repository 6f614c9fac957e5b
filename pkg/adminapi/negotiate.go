package adminapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/brainhope/console/pkg/slogx"
)

// field is an ordered form field. Order matters for the upstream's model
// binder, so fields are a slice rather than a map.
type field struct {
	Name  string
	Value string
}

// attempt is one request encoding to probe during negotiation.
type attempt struct {
	name   string
	encode func() (body []byte, contentType string, err error)
}

// loginAttempts builds the credential encodings in probe order: multipart
// with canonical field names, multipart lowercase, urlencoded, then JSON.
func loginAttempts(email, password string) []attempt {
	canonical := []field{{"Email", email}, {"Password", password}}
	lower := []field{{"email", email}, {"password", password}}
	return []attempt{
		{"multipart", multipartBody(canonical)},
		{"multipart-lowercase", multipartBody(lower)},
		{"urlencoded", urlencodedBody(canonical)},
		{"json", jsonBody(canonical)},
	}
}

// refreshAttempts mirrors loginAttempts for the refresh exchange, which goes
// to the same endpoint with a RefreshToken field in place of the password.
func refreshAttempts(email, refreshToken string) []attempt {
	canonical := []field{{"Email", email}, {"RefreshToken", refreshToken}}
	lower := []field{{"email", email}, {"refreshToken", refreshToken}}
	return []attempt{
		{"multipart", multipartBody(canonical)},
		{"multipart-lowercase", multipartBody(lower)},
		{"urlencoded", urlencodedBody(canonical)},
		{"json", jsonBody(canonical)},
	}
}

func multipartBody(fields []field) func() ([]byte, string, error) {
	return func() ([]byte, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, f := range fields {
			if err := w.WriteField(f.Name, f.Value); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), w.FormDataContentType(), nil
	}
}

func urlencodedBody(fields []field) func() ([]byte, string, error) {
	return func() ([]byte, string, error) {
		values := url.Values{}
		for _, f := range fields {
			values.Set(f.Name, f.Value)
		}
		return []byte(values.Encode()), "application/x-www-form-urlencoded", nil
	}
}

func jsonBody(fields []field) func() ([]byte, string, error) {
	return func() ([]byte, string, error) {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(&buf, "%q:%q", f.Name, f.Value)
		}
		buf.WriteByte('}')
		return buf.Bytes(), "application/json", nil
	}
}

// acceptLoginStatus treats 2xx and 401 as diagnostic: either ends the probe.
// A 401 still proves the encoding was understood, only the credentials were
// not.
func acceptLoginStatus(status int) bool {
	return (status >= 200 && status < 300) || status == http.StatusUnauthorized
}

func acceptSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// negotiate runs attempts in order against path until accept matches,
// sharing one deadline across all of them. Transport failures are recorded
// and the probe moves on. When every attempt fails at transport level the
// last failure propagates as a TransportError; when attempts completed but
// none was accepted the result is ErrAllApproachesFailed.
func (c *Client) negotiate(
	ctx context.Context,
	path string,
	attempts []attempt,
	accept func(int) bool,
) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.negotiateTimeout())
	defer cancel()

	log := slogx.FromContext(ctx)

	var lastErr error
	lastStatus := 0
	completed := false

	for _, a := range attempts {
		body, contentType, err := a.encode()
		if err != nil {
			lastErr = err
			continue
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "*/*")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			log.Debug("negotiation attempt failed", "encoding", a.name, "error", err)
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		completed = true
		lastStatus = resp.StatusCode

		if accept(resp.StatusCode) {
			log.Debug("negotiation encoding accepted", "encoding", a.name, "status", resp.StatusCode)
			return resp.StatusCode, respBody, nil
		}

		if resp.StatusCode == http.StatusBadRequest {
			log.Debug("negotiation attempt rejected",
				"encoding", a.name,
				"status", resp.StatusCode,
				"body", string(respBody),
			)
		}
	}

	if !completed {
		if lastErr != nil {
			return 0, nil, newTransportError(lastErr)
		}
		return 0, nil, ErrAllApproachesFailed
	}
	return 0, nil, fmt.Errorf("%w (last status %d)", ErrAllApproachesFailed, lastStatus)
}
