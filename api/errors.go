package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	codeValidation        = "INVALID_INPUT"
	codeNotFound          = "NOT_FOUND"
	codeInsufficientFunds = "INSUFFICIENT_FUNDS"
	codeConflict          = "CONFLICT"
	codeUnavailable       = "DEPENDENCY_UNAVAILABLE"
	codeRateLimited       = "RATE_LIMITED"
	codeUnauthorized      = "UNAUTHORIZED"
	codeInternal          = "INTERNAL"
)

// writeError maps domain errors onto the JSON error envelope.
func writeError(c *gin.Context, err error) {
	var (
		validation   domain.ValidationError
		notFound     domain.NotFoundError
		insufficient domain.InsufficientFundsError
		conflict     domain.ConflictError
		dependency   domain.DependencyError
	)

	switch {
	case errors.As(err, &validation):
		abort(c, http.StatusBadRequest, codeValidation, err.Error())
	case errors.As(err, &notFound):
		abort(c, http.StatusNotFound, codeNotFound, err.Error())
	case errors.As(err, &insufficient):
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
			"success":  false,
			"error":    err.Error(),
			"code":     codeInsufficientFunds,
			"balance":  insufficient.Balance,
			"required": insufficient.Required,
		})
	case errors.As(err, &conflict):
		abort(c, http.StatusConflict, codeConflict, err.Error())
	case errors.As(err, &dependency):
		requestLogger(c).Error("dependency failure", zap.Error(err))
		abort(c, http.StatusServiceUnavailable, codeUnavailable, "service temporarily unavailable")
	default:
		requestLogger(c).Error("unhandled error", zap.Error(err))
		abort(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg, "code": code})
}
