package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/menuvio/backoffice/pkg/accounts"
	apierrors "github.com/menuvio/backoffice/pkg/api/errors"
	"github.com/menuvio/backoffice/pkg/identity"
	"github.com/menuvio/backoffice/pkg/logger"
	custommw "github.com/menuvio/backoffice/pkg/middleware"
	"github.com/menuvio/backoffice/pkg/models"
	"github.com/menuvio/backoffice/pkg/session"
)

// AuthHandler exposes session-facing endpoints.
type AuthHandler struct {
	revocation *session.RevocationList
	resolver   *accounts.Resolver
	log        logger.Logger
}

// NewAuthHandler creates an auth handler. revocation may be nil when Redis
// is not configured.
func NewAuthHandler(revocation *session.RevocationList, resolver *accounts.Resolver, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		revocation: revocation,
		resolver:   resolver,
		log:        log,
	}
}

// MeResponse is the payload returned by the /api/me endpoint. Account and
// restaurant are null when the user has no client account yet.
type MeResponse struct {
	User       *identity.User        `json:"user"`
	Account    *models.ClientAccount `json:"account"`
	Restaurant *models.Restaurant    `json:"restaurant"`
}

// Me returns the provider-confirmed user with the resolved client account
// and restaurant.
func (h *AuthHandler) Me(c echo.Context) error {
	user := custommw.UserFromContext(c)
	if user == nil {
		return apierrors.UnauthorizedError(c)
	}

	account, restaurant := h.resolver.Resolve(c.Request().Context(), user.Email)

	return c.JSON(http.StatusOK, MeResponse{
		User:       user,
		Account:    account,
		Restaurant: restaurant,
	})
}

// Logout revokes the current session and clears the auth cookies. Always
// succeeds: logging out without a session is a no-op.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess := custommw.SessionFromContext(c)
	cookies := custommw.CookiesFromContext(c)

	if sess != nil && h.revocation != nil {
		ttl := time.Until(sess.ExpiresAt)
		if err := h.revocation.Revoke(c.Request().Context(), sess.AccessToken, ttl); err != nil {
			h.log.Warn("failed to revoke session", "error", err)
		}
	}

	if cookies != nil {
		cookies.DeleteSession()
	}

	return c.NoContent(http.StatusNoContent)
}
