package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// toAppError maps a service error onto an HTTP status. Client errors keep
// their own message; server errors are reported with msg only.
func toAppError(err error, msg string) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, apperrors.ErrValidation):
		return apperrors.NewAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, apperrors.ErrRepositoryFailure):
		return apperrors.NewAppError(http.StatusServiceUnavailable, msg, err)
	default:
		return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	appErr := toAppError(err, msg)
	if appErr.Code >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
	} else {
		logger.Warn(msg, slog.String("error", err.Error()))
	}
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
