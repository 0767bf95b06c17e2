package middleware

import (
	"context"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/Payphone-Digital/bizsite/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// IdentityResolver verifies an access token and loads the user it names.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*model.User, error)
}

type AuthMiddleware struct {
	resolver  IdentityResolver
	extractor TokenExtractor
	metrics   *metrics.Metrics
}

func NewAuthMiddleware(resolver IdentityResolver, extractor TokenExtractor, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{
		resolver:  resolver,
		extractor: extractor,
		metrics:   m,
	}
}

// RequireAuth resolves the caller or fails the request with 401 (500 when
// the server has no access secret).
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.Tag(c.Request.Context(), "middleware", "RequireAuth")

		token := m.extractor(c)
		if token == "" {
			logger.DebugWithContext(ctx, "No token provided").
				Path(c.Request.URL.Path).
				Log()
			m.metrics.AuthEvent(metrics.EventGate, apperrors.CodeUnauthenticated)
			abortWithError(c, apperrors.ErrNoToken)
			return
		}

		user, err := m.resolver.ResolveIdentity(ctx, token)
		if err != nil {
			logger.WarnWithContext(ctx, "Authentication failed").
				Path(c.Request.URL.Path).
				Err(err).
				Log()
			m.metrics.AuthEvent(metrics.EventGate, apperrors.GetErrorCode(err))
			abortWithError(c, err)
			return
		}

		setIdentity(c, user)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// the request through anonymously otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractor(c)
		if token == "" {
			c.Next()
			return
		}

		ctx := ctxutil.Tag(c.Request.Context(), "middleware", "OptionalAuth")
		user, err := m.resolver.ResolveIdentity(ctx, token)
		if err != nil {
			if apperrors.GetErrorCode(err) == apperrors.CodeServerMisconfigured {
				abortWithError(c, err)
				return
			}
			logger.DebugWithContext(ctx, "Ignoring unusable token on optional route").
				Err(err).
				Log()
			c.Next()
			return
		}

		setIdentity(c, user)
		c.Next()
	}
}

func setIdentity(c *gin.Context, user *model.User) {
	c.Set(constants.GinKeyIdentity, user)
	ctx := ctxutil.WithUserID(c.Request.Context(), user.ID)
	ctx = ctxutil.WithUserRole(ctx, string(user.Role))
	c.Request = c.Request.WithContext(ctx)
}

// Identity returns the user attached by the authentication gate.
func Identity(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(constants.GinKeyIdentity)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
