package api

import (
	"errors"
	"net/http"

	"storefront-api/internal/auth"
	"storefront-api/internal/service"
	"storefront-api/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a service or auth error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrCheckoutInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotificationNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError aborts the request with the status for err. Internal errors
// are logged and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		respondMessage(c, status, "Internal server error")
		return
	}
	if cause := service.StoreCause(err); cause != nil {
		util.GetLogger().Warn("Request rejected by store",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(cause))
	}
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
