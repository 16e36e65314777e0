package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/logger"
)

// NewIPLimiter builds an in-memory, per-process limiter from a formatted
// rate such as "10-M" (ten requests per minute).
func NewIPLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit limits requests per client IP. A nil limiter disables the check.
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		ip := c.ClientIP()
		result, err := l.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Get().Errorw("rate limit lookup failed", "ip", ip, "error", err)
			abortWithError(c, apperrors.ErrInternalServer)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))

		if result.Reached {
			logger.Get().Warnw("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
			abortWithError(c, apperrors.ErrRateLimited)
			return
		}

		c.Next()
	}
}
