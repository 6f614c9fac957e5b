package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// State keys for the operator session. These names are the persistence
// contract; external tooling inspects the table by key.
const (
	KeyAccessToken       = "accessToken"
	KeyRefreshToken      = "refreshToken"
	KeyTokenExpiry       = "tokenExpiry"
	KeyUserEmail         = "userEmail"
	KeyTempAPIBaseURL    = "tempApiBaseUrl"
	KeyCookieFingerprint = "cookieFingerprint"
)

// Store is the root data access interface. Concrete drivers implement this.
type Store interface {
	Sessions() Sessions

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Sessions persists the operator session as key/value state. Values are
// opaque strings; sealing happens above this layer.
type Sessions interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set upserts key to value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
