// Package auth defines the client credential types and their lifecycle.
//
// Credentials are set at login, cleared at logout, and read (never
// written) by the push connection manager. They are threaded explicitly
// through constructors instead of being ambient global state.
package auth

import "time"

// Credentials holds the tokens issued at login.
type Credentials struct {
	// AccessToken authenticates the push-channel connection (bearer).
	AccessToken string `json:"access_token,omitempty"`
	// APIKey authenticates REST requests.
	APIKey string `json:"api_key,omitempty"`
	// Username is the account the tokens belong to.
	Username string `json:"username,omitempty"`
	// SavedAt records when the credentials were persisted.
	SavedAt time.Time `json:"saved_at,omitempty"`
}

// Empty reports whether no usable token is present.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.APIKey == ""
}

// CanPush reports whether the push channel can be authenticated. Push
// updates are an optional enhancement; a missing token means the client
// simply runs without live updates.
func (c Credentials) CanPush() bool {
	return c.AccessToken != ""
}
