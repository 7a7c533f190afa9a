package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUnauthorized is returned when the provider rejects the access token.
	ErrUnauthorized = errors.New("identity provider rejected token")
	// ErrProviderAPIError is returned when the provider API fails for
	// reasons other than an invalid token.
	ErrProviderAPIError = errors.New("identity provider API error")
)

// User is the validated principal behind a session, as reported by the
// identity provider.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Client talks to the Supabase auth API. Cookie contents are
// client-controlled, so authorization decisions always go through GetUser
// rather than trusting a locally decoded token.
type Client struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewClient creates an identity provider client.
func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetUser verifies the access token against the provider and returns the
// authoritative user record. The provider performs the JWT signature check
// server-side; a 401/403 maps to ErrUnauthorized.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderAPIError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: status %d", ErrProviderAPIError, resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}

	if user.ID == "" {
		return nil, ErrUnauthorized
	}

	return &user, nil
}
