// Package session implements the server-side session store. A session maps
// an opaque bearer token, delivered to the browser in a cookie, to the
// authenticated principal. Sessions carry a fixed TTL and are deleted
// server-side on logout, so a stolen cookie stops working the moment the
// user logs out.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// Principal is the reduced, non-secret projection of a user that lives for
// the duration of an authenticated session. It never contains the password
// hash.
type Principal struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ErrNotFound is returned by Get when the token is unknown or the session
// has expired. The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("session not found")

// Store persists principals keyed by opaque session tokens.
type Store interface {
	// Create mints a new token, stores the principal under it with the
	// configured TTL, and returns the token.
	Create(ctx context.Context, p *Principal) (string, error)
	// Get resolves a token to its principal, or ErrNotFound.
	Get(ctx context.Context, token string) (*Principal, error)
	// Destroy removes a session. Destroying an unknown token is a no-op.
	Destroy(ctx context.Context, token string) error
}

// newToken mints a 256-bit random token. Session tokens are bearer secrets,
// so they come from crypto/rand rather than the uuid generator used for
// entity ids.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
