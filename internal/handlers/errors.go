package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrExternalService):
		return http.StatusBadGateway
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 600 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON error body. Server-side and upstream failures hide
// their detail behind fallback and are logged at error level; client errors echo the message.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := statusFor(err)
	switch {
	case status == http.StatusBadGateway:
		logger.Error(fallback, slog.Int("status", status), slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallback + ": " + upstreamFailureMessage})
	case status >= http.StatusInternalServerError:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallback})
	default:
		logger.Warn(fallback, slog.Int("status", status), slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

const upstreamFailureMessage = "upstream service unavailable"
