package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/application"
	"github.com/oksasatya/tenant-identity/pkg/response"
)

type UnitHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUnitHandler(svc *application.Service, logger *logrus.Logger) *UnitHandler {
	return &UnitHandler{Svc: svc, Logger: logger}
}

type createUnitRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

func (h *UnitHandler) List(c *gin.Context) {
	units, err := h.Svc.ListUnits(c.Request.Context(), requester(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, units, "units", gin.H{"count": len(units)})
}

func (h *UnitHandler) Create(c *gin.Context) {
	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	unit, err := h.Svc.CreateUnit(c.Request.Context(), requester(c), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, unit, "unit created", nil)
}
