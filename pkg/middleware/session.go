package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/menuvio/backoffice/pkg/identity"
	"github.com/menuvio/backoffice/pkg/metrics"
	"github.com/menuvio/backoffice/pkg/session"
)

// Context keys populated by the session middleware.
const (
	ContextKeyCookies = "cookies"
	ContextKeySession = "session"
	ContextKeyUser    = "user"
)

// Route constants used by the auth gate.
const (
	LoginRoute           = "/auth"
	ProtectedRoute       = "/private"
	ProtectedRoutePrefix = "/private"
)

// Session populates the request context with a cookie client bound to the
// request and the validated session/user pair. It runs once per request;
// the values are read-only thereafter.
//
// Sets in context:
//   - "cookies": *session.CookieClient
//   - "session": *session.Session (nil when unauthenticated)
//   - "user":    *identity.User   (nil when unauthenticated)
func Session(validator *session.Validator, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookies := session.NewCookieClient(c, cookieName)
			c.Set(ContextKeyCookies, cookies)

			sess, user := validator.Validate(c.Request().Context(), cookies)
			if sess != nil {
				c.Set(ContextKeySession, sess)
				c.Set(ContextKeyUser, user)
			}

			return next(c)
		}
	}
}

// AuthGuard enforces path-based access control. It must run after Session.
//
// Rules, in order:
//  1. no session and the path is under /private: 303 to /auth
//  2. a session and the path is exactly /auth: 303 to /private
//  3. otherwise pass through
func AuthGuard(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFromContext(c)
			path := c.Request().URL.Path

			if sess == nil && strings.HasPrefix(path, ProtectedRoutePrefix) {
				if m != nil {
					m.RecordAuthRedirect("to_auth")
				}
				return c.Redirect(http.StatusSeeOther, LoginRoute)
			}

			if sess != nil && path == LoginRoute {
				if m != nil {
					m.RecordAuthRedirect("to_private")
				}
				return c.Redirect(http.StatusSeeOther, ProtectedRoute)
			}

			return next(c)
		}
	}
}

// SessionFromContext returns the validated session, or nil.
func SessionFromContext(c echo.Context) *session.Session {
	sess, _ := c.Get(ContextKeySession).(*session.Session)
	return sess
}

// UserFromContext returns the provider-confirmed user, or nil.
func UserFromContext(c echo.Context) *identity.User {
	user, _ := c.Get(ContextKeyUser).(*identity.User)
	return user
}

// CookiesFromContext returns the request-scoped cookie client.
func CookiesFromContext(c echo.Context) *session.CookieClient {
	cookies, _ := c.Get(ContextKeyCookies).(*session.CookieClient)
	return cookies
}
