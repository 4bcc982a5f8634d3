package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nutrack/nutrack/backend/internal/api"
	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/logger"
	"github.com/nutrack/nutrack/backend/internal/middleware"
	"github.com/nutrack/nutrack/backend/internal/service"
)

// Deps is everything the router wires together.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client // optional
	Services *service.Services
	// RateLimitPerHour caps each user's writes. Zero, or no redis, disables it.
	RateLimitPerHour int
	AllowedOrigins   []string
}

// SetupRouter configures the application routes
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler(apperror.NewHandler(logger.GetLogger())))
	router.Use(middleware.CORS(deps.AllowedOrigins...))

	health := api.NewHealthHandler(deps.DB, deps.Redis)
	router.GET("/health", health.HealthCheck)
	router.GET("/api/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.Services.Auth))
	if deps.Redis != nil && deps.RateLimitPerHour > 0 {
		v1.Use(middleware.NewWriteRateLimiter(deps.Redis, deps.RateLimitPerHour).RateLimitMiddleware())
	} else {
		logger.Warn("Write rate limiting disabled", "redis", deps.Redis != nil, "limit", deps.RateLimitPerHour)
	}

	svc := deps.Services
	api.NewFoodHandler(svc.Foods).RegisterRoutes(v1)
	api.NewRecipeHandler(svc.Recipes).RegisterRoutes(v1)
	api.NewMealHandler(svc.Meals).RegisterRoutes(v1)
	api.NewTrainingHandler(svc.Exercises, svc.Workouts).RegisterRoutes(v1)
	api.NewMeasurementHandler(svc.Measurements).RegisterRoutes(v1)

	return router
}
