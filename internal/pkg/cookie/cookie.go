package cookie

import (
	"net/http"
	"strings"
	"time"

	"gin-checkout-core/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const AccessTokenCookieName = "access_token"

// SetAccessToken mirrors the bearer token into an HttpOnly cookie that lives
// exactly as long as the token.
func SetAccessToken(c *gin.Context, cfg config.CookieConfig, accessToken string, expiry time.Duration) {
	ck := accessTokenCookie(cfg, accessToken)
	ck.MaxAge = int(expiry.Seconds())
	ck.Expires = time.Now().Add(expiry)
	http.SetCookie(c.Writer, ck)
	c.Header("Cache-Control", "no-store")
}

func ClearAccessToken(c *gin.Context, cfg config.CookieConfig) {
	ck := accessTokenCookie(cfg, "")
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	http.SetCookie(c.Writer, ck)
}

func GetAccessToken(c *gin.Context) string {
	token, err := c.Cookie(AccessTokenCookieName)
	if err != nil {
		return ""
	}
	return token
}

func accessTokenCookie(cfg config.CookieConfig, value string) *http.Cookie {
	mode := sameSite(cfg.SameSite)
	// browsers drop SameSite=None cookies that are not Secure
	if mode == http.SameSiteNoneMode && !cfg.Secure {
		mode = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     AccessTokenCookieName,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: mode,
	}
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
