package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/velvetdesk/agencyops-backend/internal/handlers"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/middleware"
)

type RouterConfig struct {
	Log            *logger.Logger
	Mode           string
	AllowedOrigins []string

	AuthMW *middleware.AuthMiddleware

	Healthcheck *handlers.HealthcheckHandler
	Metrics     *handlers.MetricsHandler
	Auth        *handlers.AuthHandler
	Hints       *handlers.HintsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if strings.EqualFold(cfg.Mode, "production") || strings.EqualFold(cfg.Mode, "prod") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Observe())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthcheck", cfg.Healthcheck.Healthcheck)
	router.GET("/metrics", cfg.Metrics.Metrics)

	api := router.Group("/api")
	api.POST("/auth/login", cfg.Auth.Login)

	protected := api.Group("")
	protected.Use(cfg.AuthMW.RequireAuth())
	protected.POST("/inbox/ai-hints", cfg.Hints.GetClosingHints)

	return router
}
