package session

import (
	"context"

	"github.com/menuvio/backoffice/pkg/identity"
	"github.com/menuvio/backoffice/pkg/logger"
)

// Validator re-verifies a session against the identity provider. The
// locally readable cookie claims are never enough on their own.
type Validator struct {
	identity   *identity.Client
	revocation *RevocationList
	log        logger.Logger
}

// NewValidator creates a session validator. The revocation list is
// optional; without one, only the provider round-trip applies.
func NewValidator(idClient *identity.Client, revocation *RevocationList, log logger.Logger) *Validator {
	return &Validator{
		identity:   idClient,
		revocation: revocation,
		log:        log,
	}
}

// Validate returns the session and its provider-confirmed user, or
// (nil, nil) when the request is unauthenticated. No network call is made
// when the cookie is absent. Validation errors collapse to (nil, nil):
// callers branch on absence, they never handle auth errors.
func (v *Validator) Validate(ctx context.Context, cookies *CookieClient) (*Session, *identity.User) {
	sess := cookies.ReadSession()
	if sess == nil {
		return nil, nil
	}

	if v.revocation != nil {
		revoked, err := v.revocation.IsRevoked(ctx, sess.AccessToken)
		if err != nil {
			v.log.Warn("revocation check failed, continuing with provider check", "error", err)
		} else if revoked {
			return nil, nil
		}
	}

	user, err := v.identity.GetUser(ctx, sess.AccessToken)
	if err != nil || user == nil {
		return nil, nil
	}

	return sess, user
}
