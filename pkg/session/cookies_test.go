package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "sb-auth-token"

func newTestContext(t *testing.T, cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCookieClient_ReadSession_Missing(t *testing.T) {
	c, _ := newTestContext(t, nil)
	cc := NewCookieClient(c, testCookieName)

	assert.Nil(t, cc.ReadSession())
}

func TestCookieClient_ReadSession_Garbage(t *testing.T) {
	c, _ := newTestContext(t, &http.Cookie{Name: testCookieName, Value: "garbage"})
	cc := NewCookieClient(c, testCookieName)

	assert.Nil(t, cc.ReadSession())
}

func TestCookieClient_WriteSession_ForcesRootPath(t *testing.T) {
	c, rec := newTestContext(t, nil)
	cc := NewCookieClient(c, testCookieName)

	err := cc.WriteSession(&Session{AccessToken: "tok", RefreshToken: "ref"})
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.Equal(t, "/", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)

	decoded, err := Decode(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "tok", decoded.AccessToken)
}

func TestCookieClient_DeleteSession_ForcesRootPath(t *testing.T) {
	c, rec := newTestContext(t, &http.Cookie{Name: testCookieName, Value: "whatever"})
	cc := NewCookieClient(c, testCookieName)

	cc.DeleteSession()

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.Equal(t, "/", cookies[0].Path)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
