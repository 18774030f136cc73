package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/obe-attainment-api/api/swagger"
	"github.com/noah-isme/obe-attainment-api/internal/handler"
	internalmiddleware "github.com/noah-isme/obe-attainment-api/internal/middleware"
	"github.com/noah-isme/obe-attainment-api/internal/models"
	"github.com/noah-isme/obe-attainment-api/internal/repository"
	"github.com/noah-isme/obe-attainment-api/internal/service"
	"github.com/noah-isme/obe-attainment-api/pkg/cache"
	"github.com/noah-isme/obe-attainment-api/pkg/config"
	"github.com/noah-isme/obe-attainment-api/pkg/database"
	"github.com/noah-isme/obe-attainment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/obe-attainment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/obe-attainment-api/pkg/middleware/requestid"
)

// @title OBE Attainment API
// @version 1.0.0
// @description Course and program outcome attainment for outcome based accreditation
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const cacheNamespace = "obe"

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Attainment.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, attainment cache disabled", "error", err)
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Attainment.CacheTTL, cacheNamespace, logr, cfg.Attainment.CacheEnabled && redisClient != nil)

	defaults, err := service.PolicyFromConfig(cfg.Attainment)
	if err != nil {
		logr.Sugar().Fatalw("invalid attainment policy", "error", err)
	}
	policySvc, err := service.NewPolicyService(defaults, validator.New())
	if err != nil {
		logr.Sugar().Fatalw("invalid attainment policy", "error", err)
	}

	attainmentSvc := service.NewAttainmentService(service.AttainmentServiceParams{
		Courses:     repository.NewCourseRepository(db),
		Programs:    repository.NewProgramRepository(db),
		Outcomes:    repository.NewOutcomeRepository(db),
		Assessments: repository.NewAssessmentRepository(db),
		Students:    repository.NewStudentRepository(db),
		Marks:       repository.NewMarkRepository(db),
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Logger:      logr,
		CacheTTL:    cfg.Attainment.CacheTTL,
	})
	exportSvc := service.NewExportService(attainmentSvc, logr, nil, nil)
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret}, logr)

	attainmentHandler := handler.NewAttainmentHandler(attainmentSvc, exportSvc, policySvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis":    cacheRepo.Ping,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(authSvc))

	readers := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleFaculty)
	admins := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	courses := api.Group("/courses/:id/attainment", readers)
	courses.GET("", attainmentHandler.CourseAttainment)
	courses.GET("/report", attainmentHandler.CourseReport)
	courses.GET("/export", attainmentHandler.CourseExport)

	programs := api.Group("/programs/:id/attainment", readers)
	programs.GET("", attainmentHandler.ProgramAttainment)
	programs.GET("/export", attainmentHandler.ProgramExport)

	api.GET("/attainment/policy", readers, attainmentHandler.Policy)
	api.DELETE("/attainment/cache", admins, attainmentHandler.PurgeCache)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
