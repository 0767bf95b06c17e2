package middleware

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const slowRequestThreshold = 2 * time.Second

// LoggingMiddleware logs HTTP requests through zap instead of gin's writer.
func LoggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			// Tokens can ride in the query string, so only the path is logged.
			path, _, _ := strings.Cut(param.Path, "?")

			requestID := ""
			if param.Request != nil {
				requestID = ctxutil.GetRequestID(param.Request.Context())
			}

			logger.LogRequest(
				param.Method,
				path,
				param.StatusCode,
				param.Latency.Milliseconds(),
				param.ClientIP,
				requestID,
			)

			if param.ErrorMessage != "" {
				logger.GetLogger().Error("Request error",
					zap.String("error", param.ErrorMessage),
					zap.String("method", param.Method),
					zap.String("path", path),
					zap.String("request_id", requestID),
					zap.Int("status_code", param.StatusCode),
				)
			}

			if param.Latency > slowRequestThreshold {
				logger.GetLogger().Warn("Slow request detected",
					zap.String("method", param.Method),
					zap.String("path", path),
					zap.Duration("latency", param.Latency),
					zap.String("request_id", requestID),
				)
			}

			return ""
		},
		Output:    io.Discard,
		SkipPaths: []string{"/metrics"},
	})
}

// RecoveryMiddleware turns a panic into the coded 500 payload.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.LogPanic(recovered, c.Request.URL.Path)

		c.AbortWithStatusJSON(http.StatusInternalServerError, constants.BuildCodedErrorResponse(
			constants.MsgInternalError, apperrors.CodeInternal, "", nil,
		))
	})
}

// SecurityLoggingMiddleware flags scanner traffic and auth attempts.
func SecurityLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.Request.UserAgent()

		if isSuspiciousUserAgent(userAgent) {
			ctx := ctxutil.Tag(c.Request.Context(), "middleware", "SecurityLogging")
			logger.WarnWithContext(ctx, "Suspicious user agent detected").
				String("user_agent", userAgent).
				Path(c.Request.URL.Path).
				Log()
		}

		if c.Request.Method == http.MethodPost && strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
			ctx := ctxutil.Tag(c.Request.Context(), "middleware", "SecurityLogging")
			logger.InfoWithContext(ctx, "Auth endpoint hit").
				Path(c.Request.URL.Path).
				Log()
		}

		c.Next()
	}
}

func isSuspiciousUserAgent(userAgent string) bool {
	suspiciousPatterns := []string{
		"sqlmap", "nikto", "nmap", "masscan", "burp", "scanner",
	}

	ua := strings.ToLower(userAgent)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(ua, pattern) {
			return true
		}
	}

	return false
}
