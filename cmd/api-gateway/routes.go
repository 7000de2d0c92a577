package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-recommender-api/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-recommender-api/internal/middleware"
	"github.com/noah-isme/timetable-recommender-api/internal/models"
	"github.com/noah-isme/timetable-recommender-api/internal/service"
	"github.com/noah-isme/timetable-recommender-api/pkg/config"
	"github.com/noah-isme/timetable-recommender-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-recommender-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-recommender-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	recommendations *handler.RecommendationHandler
	courses         *handler.CourseHandler
	metrics         *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens *service.TokenService, h routeHandlers) {
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/health", "/metrics"))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	r.GET("/metrics/summary", h.metrics.Summary)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/courses", internalmiddleware.OptionalJWT(tokens), h.courses.List)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokens))

	timetables := secured.Group("/timetables")
	timetables.POST("/recommendations", h.recommendations.Recommend)
	timetables.GET("/recommendations/:id", h.recommendations.Proposal)
	timetables.GET("/recommendations/:id/variants/:variant/export", h.recommendations.Export)
	timetables.POST("", h.recommendations.Save)
	timetables.GET("", h.recommendations.ListSaved)
	timetables.GET("/:id", h.recommendations.GetSaved)
	timetables.DELETE("/:id", h.recommendations.DeleteSaved)

	admin := secured.Group("/admin")
	admin.Use(internalmiddleware.RequireRoles(models.RoleAdmin))
	admin.POST("/catalog/refresh", h.courses.RefreshCatalog)

	me := secured.Group("/me")
	me.GET("/completed-courses", h.courses.Completed)
	me.PUT("/completed-courses", h.courses.ReplaceCompleted)
	me.POST("/completed-courses/:courseId", h.courses.MarkCompleted)
	me.DELETE("/completed-courses/:courseId", h.courses.UnmarkCompleted)
	me.GET("/bookmarks", h.courses.Bookmarks)
	me.POST("/bookmarks/:courseId/toggle", h.courses.ToggleBookmark)
}
