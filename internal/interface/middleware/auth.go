package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tenant-identity/pkg/helpers"
	"github.com/oksasatya/tenant-identity/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUserEmail = "userEmail"
	CtxUserRoles = "userRoles"
)

// Auth verifies the provider-issued access token from the Authorization
// header, falling back to the access_token cookie, and stores the caller's
// email in the Gin context.
func Auth(verifier *helpers.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxUserEmail, strings.ToLower(claims.Identity()))
		c.Set(CtxUserRoles, claims.RealmAccess.Roles)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if parts := strings.SplitN(h, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if tok, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return tok
	}
	return ""
}
