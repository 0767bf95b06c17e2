package router

import "github.com/gin-gonic/gin"

func (r *Router) contentRoutes(version *gin.RouterGroup) {
	contents := version.Group("/contents")
	{
		contents.GET("", r.contentHandler.ListPublished)
		contents.GET("/:slug", r.contentHandler.GetBySlug)
	}

	admin := version.Group("/admin/contents")
	admin.Use(r.authMw.RequireAuth(), r.requireAdmin())
	{
		admin.GET("", r.contentHandler.ListAll)
		admin.GET("/:id", r.contentHandler.GetByID)
		admin.POST("", r.contentHandler.Create)
		admin.PUT("/:id", r.contentHandler.Update)
		admin.DELETE("/:id", r.contentHandler.Delete)
	}
}

func (r *Router) productRoutes(version *gin.RouterGroup) {
	products := version.Group("/products")
	{
		products.GET("", r.productHandler.List)
		products.GET("/:slug", r.productHandler.GetBySlug)
	}
}
