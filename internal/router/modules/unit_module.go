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

type UnitModule struct {
	Handler  *handlers.UnitHandler
	Verifier *helpers.TokenVerifier
	RDB      *redis.Client
	Logger   *logrus.Logger
}

func NewUnitModule(h *handlers.UnitHandler, v *helpers.TokenVerifier, rdb *redis.Client, logger *logrus.Logger) *UnitModule {
	return &UnitModule{Handler: h, Verifier: v, RDB: rdb, Logger: logger}
}

func (m *UnitModule) Register(rg *gin.RouterGroup) {
	units := rg.Group("/units")
	units.Use(
		middleware.Auth(m.Verifier),
		middleware.RateLimit(m.RDB, middleware.Limit{Max: 60, Window: time.Minute, Key: middleware.KeyByUser()}, m.Logger),
	)
	units.GET("", m.Handler.List)
	units.POST("", m.Handler.Create)
}
