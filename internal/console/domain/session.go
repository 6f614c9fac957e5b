package domain

import "time"

// Session is the operator's authenticated state against the upstream admin
// API. AccessToken empty means no session, regardless of the other fields.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenExpiry  string
	UserEmail    string
}

// Exists reports whether any session is present.
func (s Session) Exists() bool { return s.AccessToken != "" }

// Expired reports whether the recorded expiry has passed. A missing or
// unparsable expiry counts as not expired; the upstream settles the question
// with a 401 either way.
func (s Session) Expired(now time.Time) bool {
	if s.TokenExpiry == "" {
		return false
	}
	expiry, ok := ParseExpiry(s.TokenExpiry)
	if !ok {
		return false
	}
	return expiry.Before(now)
}

// Valid reports whether the session exists and has not expired.
func (s Session) Valid(now time.Time) bool {
	return s.Exists() && !s.Expired(now)
}

// expiryLayouts are the date formats the upstream has been seen emitting.
var expiryLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseExpiry parses an upstream expiry string leniently.
func ParseExpiry(s string) (time.Time, bool) {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
