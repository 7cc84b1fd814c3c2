package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
	"github.com/oksasatya/tenant-identity/pkg/response"
	"github.com/oksasatya/tenant-identity/pkg/validation"
)

type errorBody struct {
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// writeError maps an orchestrator error to the response envelope. Errors
// without a kind are reported as 500 with a generic message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		if logger != nil {
			logger.WithError(err).WithField("path", c.FullPath()).Error("unhandled error")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", errorBody{Code: apperr.KindInternal.String()})
		return
	}
	status := ae.HTTPStatus()
	msg := ae.Message
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		if ae.Kind == apperr.KindInternal || ae.Kind == apperr.KindUnknown {
			msg = "internal error"
		}
	}
	response.Error[any](c, status, msg, errorBody{Code: ae.Kind.String()})
}

func writeBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", errorBody{
		Code:    apperr.KindValidation.String(),
		Details: validation.ToDetails(err),
	})
}
