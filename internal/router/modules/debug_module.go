package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DebugModule serves Prometheus metrics at /metrics and a liveness check at /healthz.
type DebugModule struct {
	Gatherer prometheus.Gatherer
}

// NewDebugModule falls back to the default registry when g is nil.
func NewDebugModule(g prometheus.Gatherer) *DebugModule {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return &DebugModule{Gatherer: g}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
	rg.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
}
