package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mwozniak/mealvault/internal/api"
	"github.com/mwozniak/mealvault/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	mealHandler *api.MealHandler,
	authLimiter *middleware.RateLimiter,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	v1 := router.Group("/api/v1")

	var limiter gin.HandlerFunc
	if authLimiter != nil {
		limiter = authLimiter.Middleware()
	}
	authHandler.RegisterRoutes(v1, limiter)
	mealHandler.RegisterRoutes(v1)

	return router
}
