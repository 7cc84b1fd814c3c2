package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// SetTokens stores provider-issued tokens as HttpOnly cookies that expire
// with the tokens themselves.
func (m *Manager) SetTokens(c *gin.Context, access string, accessTTL time.Duration, refresh string, refreshTTL time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, access, maxAge(accessTTL), "/", m.Domain, m.Secure, true)
	if refresh != "" {
		c.SetCookie(RefreshTokenCookie, refresh, maxAge(refreshTTL), "/", m.Domain, m.Secure, true)
	}
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAge(ttl time.Duration) int {
	sec := int(ttl.Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
