package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/tenant-identity/internal/interface/http"
	"github.com/oksasatya/tenant-identity/internal/interface/middleware"
)

// AuthModule exposes the public authentication endpoints:
// POST /auth/login, /auth/logout, /auth/onboarding, /auth/password/reset.
type AuthModule struct {
	Handler *handlers.AuthHandler
	RDB     *redis.Client
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, RDB: rdb, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limit := func(max int) gin.HandlerFunc {
		return middleware.RateLimit(m.RDB, middleware.Limit{
			Max:    max,
			Window: time.Minute,
			Key:    middleware.KeyByIPAndPath(),
			Allow:  middleware.AllowPrivateIP(),
		}, m.Logger)
	}

	auth := rg.Group("/auth")
	auth.POST("/login", limit(10), m.Handler.Login)
	auth.POST("/logout", limit(60), m.Handler.Logout)
	auth.POST("/onboarding", limit(5), m.Handler.Onboarding)
	auth.POST("/password/reset", limit(5), m.Handler.PasswordReset)
}
