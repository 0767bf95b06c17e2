package router

import (
	"github.com/Payphone-Digital/bizsite/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	if r.limiters.Auth != nil {
		auth.Use(middleware.RateLimit(r.limiters.Auth, "auth", r.metrics))
	}
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.Refresh)
		auth.POST("/logout", r.authHandler.Logout)

		auth.POST("/forgot-password", r.authHandler.ForgotPassword)
		auth.GET("/reset-password", r.authHandler.ValidateResetToken)
		auth.GET("/reset-password/:token", r.authHandler.ValidateResetToken)
		auth.POST("/reset-password", r.authHandler.ResetPassword)
	}
}
