package router

import (
	"github.com/Payphone-Digital/bizsite/config"
	"github.com/Payphone-Digital/bizsite/internal/handler"
	"github.com/Payphone-Digital/bizsite/internal/middleware"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/pkg/metrics"
	"github.com/Payphone-Digital/bizsite/pkg/ratelimit"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Content  *handler.ContentHandler
	Product  *handler.ProductHandler
	Enquiry  *handler.EnquiryHandler
	Wishlist *handler.WishlistHandler
	Health   *handler.HealthHandler
}

// Limiters holds the limiter for all API traffic and the stricter one for
// the unauthenticated auth endpoints.
type Limiters struct {
	Global ratelimit.Limiter
	Auth   ratelimit.Limiter
}

type Router struct {
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	contentHandler  *handler.ContentHandler
	productHandler  *handler.ProductHandler
	enquiryHandler  *handler.EnquiryHandler
	wishlistHandler *handler.WishlistHandler
	healthHandler   *handler.HealthHandler

	authMw   *middleware.AuthMiddleware
	limiters Limiters
	metrics  *metrics.Metrics
	Config   *config.Config
}

func NewRouter(
	handlers Handlers,
	authMw *middleware.AuthMiddleware,
	limiters Limiters,
	m *metrics.Metrics,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:     handlers.Auth,
		userHandler:     handlers.User,
		contentHandler:  handlers.Content,
		productHandler:  handlers.Product,
		enquiryHandler:  handlers.Enquiry,
		wishlistHandler: handlers.Wishlist,
		healthHandler:   handlers.Health,

		authMw:   authMw,
		limiters: limiters,
		metrics:  m,
		Config:   config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestContext())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityLoggingMiddleware())
	router.Use(middleware.CORS(r.Config.App.FrontendURL))
	if r.metrics != nil {
		router.Use(r.metrics.Middleware())
		router.GET("/metrics", r.metrics.Handler())
	}

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RequestTimeout(r.Config.App.Timeout))
			if r.limiters.Global != nil {
				v1.Use(middleware.RateLimit(r.limiters.Global, "global", r.metrics))
			}

			r.authRoutes(v1)
			r.userRoutes(v1)
			r.contentRoutes(v1)
			r.productRoutes(v1)
			r.enquiryRoutes(v1)
			r.wishlistRoutes(v1)
		}
	}

	return router
}

func (r *Router) requireAdmin() gin.HandlerFunc {
	return middleware.RequireRole(model.RoleAdmin, r.metrics)
}
