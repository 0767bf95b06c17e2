package router

import "github.com/gin-gonic/gin"

func (r *Router) enquiryRoutes(version *gin.RouterGroup) {
	enquiries := version.Group("/enquiries")
	{
		// Anyone may send an enquiry; a logged in caller becomes its owner.
		enquiries.POST("", r.authMw.OptionalAuth(), r.enquiryHandler.Create)

		protected := enquiries.Group("")
		protected.Use(r.authMw.RequireAuth())
		{
			protected.GET("/mine", r.enquiryHandler.ListMine)
			protected.GET("/:id", r.enquiryHandler.Get)

			protected.GET("", r.requireAdmin(), r.enquiryHandler.List)
			protected.PATCH("/:id", r.requireAdmin(), r.enquiryHandler.Update)
		}
	}
}

func (r *Router) wishlistRoutes(version *gin.RouterGroup) {
	wishlist := version.Group("/wishlist")
	wishlist.Use(r.authMw.RequireAuth())
	{
		wishlist.GET("", r.wishlistHandler.List)
		wishlist.POST("", r.wishlistHandler.Add)
		wishlist.GET("/:productId", r.wishlistHandler.Contains)
		wishlist.DELETE("/:productId", r.wishlistHandler.Remove)
	}
}
