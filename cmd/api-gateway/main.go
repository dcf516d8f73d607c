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
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-progress-api/api/swagger"
	"github.com/noah-isme/course-progress-api/internal/aggregate"
	"github.com/noah-isme/course-progress-api/internal/chat"
	"github.com/noah-isme/course-progress-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-progress-api/internal/middleware"
	"github.com/noah-isme/course-progress-api/internal/repository"
	"github.com/noah-isme/course-progress-api/internal/service"
	"github.com/noah-isme/course-progress-api/pkg/cache"
	"github.com/noah-isme/course-progress-api/pkg/config"
	"github.com/noah-isme/course-progress-api/pkg/database"
	"github.com/noah-isme/course-progress-api/pkg/export"
	"github.com/noah-isme/course-progress-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-progress-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-progress-api/pkg/middleware/requestid"
)

// @title Course Progress API
// @version 1.0.0
// @description Dashboard metrics, mentor views and assistant chat over the course backend
// @BasePath /api
// @schemes http

type keyValueStore interface {
	chat.Store
	repository.KeyValueStore
}

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.ReadinessCheck{}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	var store keyValueStore = repository.NewMemoryStore()
	if redisClient != nil {
		redisStore := repository.NewRedisStore(redisClient)
		defer redisStore.Close() //nolint:errcheck
		store = redisStore
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logr.Warn("redis disabled; sessions and chat history are kept in memory")
	}

	upstream := repository.NewUpstreamClient(cfg.Upstream, &http.Client{})
	gateway := repository.NewUpstreamGateway(upstream)

	source, closeSource := recordSource(ctx, cfg, upstream, logr, checks)
	defer closeSource()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(store), metricsSvc, cfg.Records.CacheTTL, logr, cfg.Records.CacheEnabled)
	recordSvc := service.NewRecordService(service.RecordServiceParams{
		Source:     source,
		SourceName: cfg.DataSource,
		Cache:      cacheSvc,
		Metrics:    metricsSvc,
		Logger:     logr,
	})

	validate := validator.New()
	policy := aggregate.DefaultCompletionPolicy()
	policy.Origin = cfg.Records.WeekOrigin

	authSvc := service.NewAuthService(gateway, store, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Records: recordSvc,
		Tracker: service.NewRequestTracker(),
		Metrics: metricsSvc,
		Logger:  logr,
		Config: service.DashboardServiceConfig{
			Completion:         policy,
			EnrollmentPageSize: cfg.Dashboard.EnrollmentPageSize,
		},
	})
	guard := service.NewInFlightGuard()
	chatSvc := service.NewChatService(service.ChatServiceParams{
		Gateway:   gateway,
		History:   chat.NewHistory(store, cfg.Chat.HistoryTTL, logr),
		Guard:     guard,
		Validator: validate,
		Metrics:   metricsSvc,
		Logger:    logr,
	})
	sqlChatSvc := service.NewSQLChatService(service.SQLChatServiceParams{
		Gateway:   gateway,
		History:   chat.NewSQLHistory(store, cfg.Chat.HistoryTTL, logr),
		Guard:     guard,
		Validator: validate,
		Metrics:   metricsSvc,
		Logger:    logr,
	})

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc, cfg.Env == config.EnvProduction),
		Records:   handler.NewRecordHandler(recordSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc, service.NewExportService(dashboardSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)),
		Mentors:   handler.NewMentorHandler(service.NewMentorService(recordSvc, cfg.Dashboard.MentorWeekWindow, logr)),
		Chat:      handler.NewChatHandler(chatSvc, sqlChatSvc),
		Uploads:   handler.NewUploadHandler(service.NewUploadService(gateway, recordSvc, cfg.Uploads.MaxFileSizeBytes, logr), cfg.Uploads.MaxFileSizeBytes),
		Metrics:   handler.NewMetricsHandler(metricsSvc, checks),
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterRoutes(r, r.Group(cfg.APIPrefix), handlers, internalmiddleware.JWT(authSvc))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "data_source", cfg.DataSource)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// recordSource selects where raw course records come from. Uploads and the assistants
// always go to the upstream backend.
func recordSource(ctx context.Context, cfg *config.Config, upstream *repository.UpstreamClient, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (service.RecordSource, func()) {
	if cfg.DataSource != config.DataSourcePostgres {
		return repository.NewUpstreamRecordRepository(upstream), func() {}
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	checks["postgres"] = db.PingContext
	return repository.NewRecordRepository(db), closeDB(db, logr)
}

func closeDB(db *sqlx.DB, logr *zap.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logr.Warn("close postgres", zap.Error(err))
		}
	}
}
