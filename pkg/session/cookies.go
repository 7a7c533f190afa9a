package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieClient is a request-scoped handle over the auth cookies of a
// single request/response pair. All writes force Path=/ so the auth
// frontend and this API always see the same cookie.
type CookieClient struct {
	c    echo.Context
	name string
}

// NewCookieClient binds a cookie client to the current request.
func NewCookieClient(c echo.Context, cookieName string) *CookieClient {
	return &CookieClient{c: c, name: cookieName}
}

// ReadSession decodes the auth cookie into a Session. A missing or
// malformed cookie yields nil without error: both mean "no session".
func (cc *CookieClient) ReadSession() *Session {
	cookie, err := cc.c.Cookie(cc.name)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sess, err := Decode(cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}

// WriteSession stores the session in the auth cookie.
func (cc *CookieClient) WriteSession(sess *Session) error {
	value, err := sess.Encode()
	if err != nil {
		return err
	}

	cc.c.SetCookie(&http.Cookie{
		Name:     cc.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// DeleteSession expires the auth cookie.
func (cc *CookieClient) DeleteSession() {
	cc.c.SetCookie(&http.Cookie{
		Name:     cc.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
