package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/logger"
)

// resolveError maps an error attached to the context onto the AppError sent
// to the client. Anything unrecognised becomes a 500 with the cause kept
// internal.
func resolveError(ginErr *gin.Error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(ginErr.Err, &appErr):
		return appErr
	case ginErr.IsType(gin.ErrorTypeBind):
		return apperrors.Wrap(apperrors.ErrInvalidInput, ginErr.Err)
	case errors.Is(ginErr.Err, gorm.ErrRecordNotFound):
		return apperrors.Wrap(apperrors.ErrNotFound, ginErr.Err)
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, ginErr.Err)
	}
}

// ErrorHandler writes the last error a handler attached with c.Error as the
// standard JSON error body, unless the handler already responded.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := resolveError(c.Errors.Last())
		if appErr.Internal != nil {
			fields := []any{
				"code", appErr.Code,
				"error", appErr.Internal.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", RequestID(c),
			}
			if appErr.StatusCode >= 500 {
				logger.Get().Errorw("request failed", fields...)
			} else {
				logger.Get().Warnw("request rejected", fields...)
			}
		}
		abortWithError(c, appErr)
	}
}
