package middleware

import (
	"context"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxRequestIDLength = 64

// RequestContext copies request tracking data into the request context and
// echoes the request id back in X-Request-ID. A caller supplied id is kept
// when it looks sane.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestMeta(c.Request.Context(), ctxutil.RequestMeta{
			RequestID: requestID,
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			StartTime: time.Now(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderXRequestID, requestID)

		c.Next()
	}
}

// RequestTimeout bounds the request context. Handlers pass the context to
// gorm and redis so slow queries are cancelled with it.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			logger.WarnWithContext(context.WithoutCancel(ctx), "Request exceeded timeout").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Duration(timeout).
				Log()
		}
	}
}
