package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/tenant-identity/internal/interface/http"
	"github.com/oksasatya/tenant-identity/internal/interface/middleware"
	"github.com/oksasatya/tenant-identity/pkg/helpers"
)

// UserModule wires the protected user endpoints under /users.
type UserModule struct {
	Handler  *handlers.UserHandler
	Verifier *helpers.TokenVerifier
	RDB      *redis.Client
	Logger   *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, v *helpers.TokenVerifier, rdb *redis.Client, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Verifier: v, RDB: rdb, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.Auth(m.Verifier),
		middleware.RateLimit(m.RDB, middleware.Limit{Max: 120, Window: time.Minute, Key: middleware.KeyByUser()}, m.Logger),
	)

	writes := middleware.RateLimit(m.RDB, middleware.Limit{Max: 30, Window: time.Minute, Key: middleware.KeyByUser()}, m.Logger)

	users.GET("/me", m.Handler.Me)
	users.POST("/me/avatar", writes, m.Handler.UploadAvatar)
	users.GET("", m.Handler.List)
	users.GET("/search", m.Handler.Search)
	users.GET("/:id", m.Handler.Get)
	users.POST("", writes, m.Handler.Create)
	users.PATCH("/:id", writes, m.Handler.Update)
	users.POST("/ban", writes, m.Handler.Ban)
	users.POST("/activate", writes, m.Handler.Activate)
}
