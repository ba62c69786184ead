package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// Error codes carried in the response envelope.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	CodeOptionSelection    = "OPTION_SELECTION_ERROR"
	CodeState              = "STATE_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// statusFor maps a service error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	var (
		nf  *services.NotFoundError
		ve  *services.ValidationError
		pu  *services.ProductUnavailableError
		sel *services.OptionSelectionError
		se  *services.StateError
	)
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &ve):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &pu):
		return http.StatusUnprocessableEntity, CodeProductUnavailable
	case errors.As(err, &sel):
		return http.StatusUnprocessableEntity, CodeOptionSelection
	case errors.As(err, &se):
		return http.StatusConflict, CodeState
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func respondServiceError(c *gin.Context, log *logrus.Logger, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("unexpected service error")
		utils.RespondErrorCode(c, status, code, "internal server error")
		return
	}
	utils.RespondErrorCode(c, status, code, err.Error())
}

func respondBindError(c *gin.Context, err error) {
	utils.RespondErrorCode(c, http.StatusBadRequest, CodeValidation, err.Error())
}
