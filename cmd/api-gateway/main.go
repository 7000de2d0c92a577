package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-recommender-api/api/swagger"
	"github.com/noah-isme/timetable-recommender-api/internal/handler"
	"github.com/noah-isme/timetable-recommender-api/internal/repository"
	"github.com/noah-isme/timetable-recommender-api/internal/service"
	"github.com/noah-isme/timetable-recommender-api/pkg/cache"
	"github.com/noah-isme/timetable-recommender-api/pkg/config"
	"github.com/noah-isme/timetable-recommender-api/pkg/database"
	"github.com/noah-isme/timetable-recommender-api/pkg/logger"
)

// @title Timetable Recommender API
// @version 1.0.0
// @description Generates conflict-free course timetables from a student's constraints.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		migrator, err := database.NewMigrator(db.DB, logr)
		if err != nil {
			logr.Fatal("failed to prepare migrations", zap.Error(err))
		}
		if err := migrator.Up(ctx); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
	}
	defer redisClient.Close()

	validate := validator.New()
	metrics := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	savedRepo := repository.NewSavedTimetableRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	studentCourseRepo := repository.NewStudentCourseRepository(redisClient)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cfg.Cache.Enabled)
	catalogSvc := service.NewCatalogService(courseRepo, cacheSvc, metrics, cfg.Catalog.CacheTTL, logr)
	studentCourseSvc := service.NewStudentCourseService(studentCourseRepo, catalogSvc, validate, logr)
	exportSvc := service.NewExportService(nil, nil, logr)
	recommendationSvc := service.NewRecommendationService(catalogSvc, studentCourseSvc, savedRepo, db, exportSvc, metrics, validate, logr, service.RecommendationConfig{
		MaxCredits:        cfg.Recommender.MaxCredits,
		MaxCourseCount:    cfg.Recommender.MaxCourseCount,
		VariantCount:      cfg.Recommender.VariantCount,
		MaxVariantCount:   cfg.Recommender.MaxVariantCount,
		ConflictMode:      cfg.Recommender.ConflictMode,
		UniqueCourseCodes: cfg.Recommender.UniqueCourseCodes,
		Diversification:   cfg.Recommender.Diversification,
		ProposalTTL:       cfg.Recommender.ProposalTTL,
	})
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.Expiration})

	handlers := routeHandlers{
		recommendations: handler.NewRecommendationHandler(recommendationSvc),
		courses:         handler.NewCourseHandler(catalogSvc, studentCourseSvc),
		metrics: handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
			"postgres": db.PingContext,
			"redis":    cacheRepo.Ping,
		}),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	registerRoutes(r, cfg, logr, metrics, tokenSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("api_prefix", cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
