package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedCookie is returned when the auth cookie cannot be decoded.
var ErrMalformedCookie = errors.New("malformed session cookie")

// Session is the locally decoded auth cookie payload. Its claims are
// client-controlled: they identify which tokens to present to the identity
// provider but are never trusted for authorization on their own.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// Derived from the unverified access token claims.
	UserID    string    `json:"-"`
	Email     string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Decode parses a cookie value produced by Encode: base64url-encoded JSON
// carrying the provider token pair. Expiry and identity hints are filled
// in from the access token claims without verifying the signature.
func Decode(cookieValue string) (*Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cookieValue)
	if err != nil {
		return nil, ErrMalformedCookie
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, ErrMalformedCookie
	}
	if sess.AccessToken == "" {
		return nil, ErrMalformedCookie
	}

	sess.hydrateFromClaims()
	return &sess, nil
}

// Encode serializes the session into its cookie representation.
func (s *Session) Encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// hydrateFromClaims extracts sub, email and exp from the access token.
// ParseUnverified is deliberate: signature verification belongs to the
// provider round-trip, these fields are hints only.
func (s *Session) hydrateFromClaims() {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return
	}

	if sub, err := claims.GetSubject(); err == nil {
		s.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		s.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
}
