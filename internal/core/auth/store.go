package auth

import (
	"context"
	"errors"
)

// ErrNotLoggedIn indicates no credentials are persisted.
var ErrNotLoggedIn = errors.New("not logged in")

// Store defines persistence operations for credentials.
type Store interface {
	// Load returns the persisted credentials. Returns ErrNotLoggedIn if
	// none are stored.
	Load(ctx context.Context) (Credentials, error)
	// Save persists the credentials, replacing any existing ones.
	Save(ctx context.Context, c Credentials) error
	// Clear removes any persisted credentials. Clearing an empty store is
	// not an error.
	Clear(ctx context.Context) error
}
