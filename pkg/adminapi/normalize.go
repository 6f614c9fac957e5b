package adminapi

import (
	"encoding/json"
	"strings"
)

// ExtractTokenInfo locates the token payload within a login or refresh
// response body. The shapes are checked in a fixed order and the first match
// wins; the order is part of the contract because real responses have matched
// more than one probe at once:
//
//  1. response.accessToken.token (+ response.refreshToken.token,
//     response.accessToken.expiryTokenDate)
//  2. accessToken as string or {token} (+ refreshToken as {token} or string,
//     expiryDate or expiry)
//  3. token (+ refreshToken, expiryDate or expiry)
//  4. data.token (+ data.refreshToken, data.expiryDate or data.expiry)
//  5. the body is itself a JSON string holding a compact JWT
//
// RefreshToken and Expiry are best-effort; a match with only an access token
// is still a match. ErrResponseFormat is returned when no shape applies.
func ExtractTokenInfo(body []byte) (TokenInfo, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return TokenInfo{}, ErrResponseFormat
	}

	if s, ok := payload.(string); ok && looksLikeJWT(s) {
		return TokenInfo{AccessToken: s}, nil
	}

	data, ok := payload.(map[string]any)
	if !ok {
		return TokenInfo{}, ErrResponseFormat
	}

	if response := childMap(data, "response"); response != nil {
		if access := childMap(response, "accessToken"); access != nil {
			if token, ok := access["token"].(string); ok && token != "" {
				info := TokenInfo{AccessToken: token}
				if refresh := childMap(response, "refreshToken"); refresh != nil {
					info.RefreshToken, _ = refresh["token"].(string)
				}
				info.Expiry, _ = access["expiryTokenDate"].(string)
				return info, nil
			}
		}
	}

	if raw, ok := data["accessToken"]; ok && raw != nil {
		var token string
		switch v := raw.(type) {
		case string:
			token = v
		case map[string]any:
			token, _ = v["token"].(string)
		}
		if token != "" {
			info := TokenInfo{AccessToken: token}
			switch refresh := data["refreshToken"].(type) {
			case map[string]any:
				info.RefreshToken, _ = refresh["token"].(string)
			case string:
				info.RefreshToken = refresh
			}
			info.Expiry = Record(data).Str("expiryDate", "expiry")
			return info, nil
		}
	}

	if token, ok := data["token"].(string); ok && token != "" {
		info := TokenInfo{AccessToken: token}
		info.RefreshToken, _ = data["refreshToken"].(string)
		info.Expiry = Record(data).Str("expiryDate", "expiry")
		return info, nil
	}

	if inner := childMap(data, "data"); inner != nil {
		if token, ok := inner["token"].(string); ok && token != "" {
			info := TokenInfo{AccessToken: token}
			info.RefreshToken, _ = inner["refreshToken"].(string)
			info.Expiry = Record(inner).Str("expiryDate", "expiry")
			return info, nil
		}
	}

	return TokenInfo{}, ErrResponseFormat
}

// LoginSucceeded reports whether a 2xx login body actually represents
// success. The upstream sometimes answers 200 with a failure payload, so
// success means an explicit flag or any recognizable token shape.
func LoginSucceeded(body []byte) bool {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}

	if s, ok := payload.(string); ok {
		return looksLikeJWT(s)
	}

	data, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	if data["isSuccess"] == true || data["success"] == true {
		return true
	}

	if response := childMap(data, "response"); response != nil {
		if _, ok := response["accessToken"]; ok {
			return true
		}
	}
	for _, key := range []string{"accessToken", "token"} {
		if v, ok := data[key]; ok && v != nil {
			return true
		}
	}
	if inner := childMap(data, "data"); inner != nil {
		if v, ok := inner["token"]; ok && v != nil {
			return true
		}
	}
	return false
}

// looksLikeJWT reports whether s has the three-segment compact form.
func looksLikeJWT(s string) bool {
	return len(strings.Split(s, ".")) == 3
}

func childMap(m map[string]any, key string) map[string]any {
	child, _ := m[key].(map[string]any)
	return child
}
