package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	users.Use(r.authMw.RequireAuth())
	{
		// Own profile
		users.GET("/me", r.userHandler.Me)
		users.PUT("/me", r.userHandler.UpdateMe)
		users.PUT("/me/password", r.userHandler.ChangePassword)

		users.GET("", r.requireAdmin(), r.userHandler.GetAll)
	}
}
