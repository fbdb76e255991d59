package routes

import (
	"blog_backend/internal/config"
	"blog_backend/internal/docs"
	"blog_backend/internal/handlers"
	"blog_backend/internal/logger"
	"blog_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options - необязательные служебные маршруты
type Options struct {
	Metrics bool
	Swagger bool
	// UploadsDir раздается по UploadsURL, если задан (локальное хранилище)
	UploadsDir string
	UploadsURL string
}

// OptionsFromConfig собирает Options из конфигурации
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Metrics: cfg.Metrics.Enabled,
		Swagger: cfg.Swagger.Enabled,
	}
}

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, opts Options) {
	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.PostHandler.RegisterRoutes(api)
		appHandlers.CommentHandler.RegisterRoutes(api)
		appHandlers.CategoryHandler.RegisterRoutes(api)
	}

	ginRouter.GET("/health", appHandlers.HealthHandler.Health)

	if opts.Metrics {
		ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logger.Info("Metrics route /metrics registered")
	}

	if opts.Swagger {
		docs.SwaggerInfo.BasePath = "/api"
		ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		logger.Info("Swagger route /swagger/index.html registered")
	}

	if opts.UploadsDir != "" && opts.UploadsURL != "" {
		ginRouter.StaticFS(opts.UploadsURL, gin.Dir(opts.UploadsDir, false))
	}

	ginRouter.NoRoute(apperrors.NotFoundHandler)
	ginRouter.NoMethod(apperrors.NotFoundHandler)
}
