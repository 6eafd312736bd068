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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/handler"
	"github.com/noah-isme/academic-records-api/internal/middleware"
	"github.com/noah-isme/academic-records-api/internal/repository"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/cache"
	"github.com/noah-isme/academic-records-api/pkg/config"
	"github.com/noah-isme/academic-records-api/pkg/database"
	"github.com/noah-isme/academic-records-api/pkg/export"
	"github.com/noah-isme/academic-records-api/pkg/jobs"
	"github.com/noah-isme/academic-records-api/pkg/logger"
	"github.com/noah-isme/academic-records-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/academic-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-records-api/pkg/middleware/requestid"
	"github.com/noah-isme/academic-records-api/pkg/storage"
)

// @title Academic Records API
// @version 1.0.0
// @description Periods, groups, enrollments, grades, attendance and academic reports.
// @BasePath /api/v1
// @schemes http
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Reports.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, "academic-records", logr)
	defer cacheRepo.Close()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, redisClient != nil)

	validate := service.NewValidator()
	policy := service.PolicyFromConfig(cfg.Policy)
	lookup := service.NewRecordLookup(repository.NewLookupRepository(db), logr)

	userRepo := repository.NewUserRepository(db)
	courseGroupRepo := repository.NewCourseGroupRepository(db)
	reportRepo := repository.NewAcademicReportRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, courseGroupRepo, authSvc, validate, logr)
	periodSvc := service.NewPeriodService(repository.NewPeriodRepository(db), cacheSvc, validate, logr)
	groupSvc := service.NewGroupService(repository.NewGroupRepository(db), courseGroupRepo, lookup, cacheSvc, validate, logr)
	studentSvc := service.NewStudentService(repository.NewStudentRepository(db), lookup, cacheSvc, validate, logr)
	courseGroupSvc := service.NewCourseGroupService(courseGroupRepo, lookup, policy, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(repository.NewCourseRepository(db), courseGroupSvc, cacheSvc, validate, logr)
	enrollmentSvc := service.NewCourseGroupStudentService(repository.NewCourseGroupStudentRepository(db), lookup, policy, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(repository.NewAttendanceRepository(db), lookup, policy, metrics, validate, logr)
	schemeSvc := service.NewGradingSchemeService(repository.NewGradingSchemeRepository(db), lookup, validate, logr)
	evaluationSvc := service.NewPartialEvaluationService(repository.NewPartialEvaluationRepository(db), lookup, policy, validate, logr)
	evaluationGradeSvc := service.NewPartialEvaluationGradeService(repository.NewPartialEvaluationGradeRepository(db), lookup, policy, metrics, validate, logr)
	partialGradeSvc := service.NewPartialGradeService(repository.NewPartialGradeRepository(db), lookup, policy, cacheSvc, metrics, validate, logr)
	finalGradeSvc := service.NewFinalGradeService(repository.NewFinalGradeRepository(db), lookup, policy, metrics, validate, logr)
	gradebookSvc := service.NewGradebookService(repository.NewGradebookRepository(db), courseGroupRepo, lookup, metrics, logr)
	reportSvc := service.NewAcademicReportService(reportRepo, lookup, policy, cacheSvc, metrics, logr)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		exportJobs, queue, err := buildExports(ctx, cfg, db, reportSvc, lookup, validate, metrics, logr)
		if err != nil {
			logr.Fatal("failed to initialise exports", zap.Error(err))
		}
		defer queue.Stop()
		exportHandler = handler.NewExportHandler(exportJobs)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	registerRoutes(r, cfg, authSvc, handlers{
		auth:             handler.NewAuthHandler(authSvc),
		users:            handler.NewUserHandler(userSvc),
		periods:          handler.NewPeriodHandler(periodSvc, reportSvc),
		groups:           handler.NewGroupHandler(groupSvc, reportSvc),
		students:         handler.NewStudentHandler(studentSvc),
		courses:          handler.NewCourseHandler(courseSvc),
		courseGroups:     handler.NewCourseGroupHandler(courseGroupSvc, gradebookSvc),
		enrollments:      handler.NewCourseGroupStudentHandler(enrollmentSvc),
		attendance:       handler.NewAttendanceHandler(attendanceSvc),
		schemes:          handler.NewGradingSchemeHandler(schemeSvc),
		evaluations:      handler.NewPartialEvaluationHandler(evaluationSvc),
		evaluationGrades: handler.NewPartialEvaluationGradeHandler(evaluationGradeSvc),
		partialGrades:    handler.NewPartialGradeHandler(partialGradeSvc),
		finalGrades:      handler.NewFinalGradeHandler(finalGradeSvc),
		exports:          exportHandler,
		metrics: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"database": db,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Ping(ctx).Err()
			}),
		}),
	})

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func buildExports(ctx context.Context, cfg *config.Config, db *sqlx.DB, boletas *service.AcademicReportService, lookup service.RecordLookup, validate *validator.Validate, metrics *service.MetricsService, logr *zap.Logger) (*service.ExportJobService, *jobs.Queue, error) {
	store, err := storage.NewExportStore(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewDownloadSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(boletas, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, &export.CSVExporter{BOM: true}, nil, nil)

	jobRepo := repository.NewExportJobRepository(db)
	sender := mailer.New(mailer.Config{
		Provider:    cfg.Mail.Provider,
		APIKey:      cfg.Mail.SendGridAPIKey,
		FromName:    cfg.Mail.FromName,
		FromAddress: cfg.Mail.FromAddress,
	}, logr)
	worker := service.NewExportWorker(jobRepo, exporter, sender, metrics, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue("boleta-exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)

	jobSvc := service.NewExportJobService(jobRepo, lookup, queue, exporter, validate, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	jobSvc.RecoverPendingJobs(ctx)
	jobSvc.StartCleanup(ctx)
	return jobSvc, queue, nil
}
