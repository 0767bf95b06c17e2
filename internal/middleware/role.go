package middleware

import (
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/Payphone-Digital/bizsite/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after RequireAuth. It answers 401 when no identity is
// attached and 403 when the identity's role does not satisfy role.
func RequireRole(role model.Role, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := Identity(c)
		if !ok {
			m.AuthEvent(metrics.EventRoleGate, apperrors.CodeUnauthenticated)
			abortWithError(c, apperrors.ErrUnauthenticated)
			return
		}

		if !user.Role.Satisfies(role) {
			ctx := ctxutil.Tag(c.Request.Context(), "middleware", "RequireRole")
			logger.WarnWithContext(ctx, "Role check failed").
				String("required_role", string(role)).
				String("actual_role", string(user.Role)).
				Path(c.Request.URL.Path).
				Log()
			m.AuthEvent(metrics.EventRoleGate, apperrors.CodeForbidden)
			abortWithError(c, apperrors.ErrForbidden)
			return
		}

		c.Next()
	}
}
