//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"

	"gin-checkout-core/internal/handler/dto/request"
	"gin-checkout-core/internal/handler/dto/response"
	"gin-checkout-core/internal/pkg/cookie"
	"gin-checkout-core/tests/common/dbtest"
	"gin-checkout-core/tests/common/httptest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/auth/logout"
)

// LoginUser signs in through the public endpoint and returns the access
// token. The body and the cookie must carry the same token.
func LoginUser(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()

	w := httptest.Do(t, h, http.MethodPost, loginPath, request.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body response.LoginResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
	require.NotEmpty(t, body.AccessToken, "ログインレスポンスにトークンがない")

	ck := httptest.ExtractCookie(w, cookie.AccessTokenCookieName)
	require.NotNil(t, ck, "アクセストークンのCookieがない")
	require.Equal(t, body.AccessToken, ck.Value)

	return body.AccessToken
}

// CreateAndLogin seeds a user with dbtest.DefaultPassword and signs it in.
func CreateAndLogin(t *testing.T, db dbtest.DBLike, h http.Handler, email, role string) (uuid.UUID, string) {
	t.Helper()
	id := dbtest.CreateTestUser(t, db, email, role)
	return id, LoginUser(t, h, email, dbtest.DefaultPassword)
}

// LogoutUser expects the session cookie to be expired in the response.
func LogoutUser(t *testing.T, h http.Handler, cookies []*http.Cookie) {
	t.Helper()

	w := httptest.Do(t, h, http.MethodPost, logoutPath, nil, httptest.WithCookies(cookies...))
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	ck := httptest.ExtractCookie(w, cookie.AccessTokenCookieName)
	require.NotNil(t, ck)
	require.Empty(t, ck.Value)
}
