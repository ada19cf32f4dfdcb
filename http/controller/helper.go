package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-form-service/service"
	"github.com/tnqbao/gau-form-service/utils"
)

// respondServiceError maps the service failure taxonomy onto HTTP statuses.
// The error text is passed through; clients distinguish by status.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		utils.JSON404(c, err.Error())
	case errors.Is(err, service.ErrInvalidPayload):
		utils.JSON422(c, err.Error())
	case errors.Is(err, service.ErrPayloadTooLarge):
		utils.JSON413(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		utils.JSON409(c, err.Error())
	case errors.Is(err, service.ErrDeliveryFailed):
		utils.JSON502(c, err.Error())
	case errors.Is(err, service.ErrExpired):
		utils.JSON410(c, err.Error())
	case errors.Is(err, service.ErrMismatch):
		utils.JSON401(c, err.Error())
	default:
		utils.JSON500(c, err.Error())
	}
}
