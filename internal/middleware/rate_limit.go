package middleware

import (
	"math"
	"strconv"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/Payphone-Digital/bizsite/pkg/metrics"
	"github.com/Payphone-Digital/bizsite/pkg/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimit limits requests per client IP. scope labels the metric and the
// log line. If the limiter itself fails the request is let through.
func RateLimit(limiter ratelimit.Limiter, scope string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.Tag(c.Request.Context(), "middleware", "RateLimit")
		ip := c.ClientIP()

		decision, err := limiter.Allow(ctx, ip)
		if err != nil {
			logger.ErrorWithContext(ctx, "Rate limiter unavailable, allowing request").
				String("scope", scope).
				Err(err).
				Log()
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.WarnWithContext(ctx, "Rate limit exceeded").
				String("scope", scope).
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Int("retry_after", retryAfter).
				Log()
			m.RateLimited(scope)

			c.Header(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
			abortWithError(c, apperrors.ErrRateLimited)
			return
		}

		c.Next()
	}
}
