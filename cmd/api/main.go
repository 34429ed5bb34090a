package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/config"
	"github.com/Suvodeep90/expertiza-E1792/internal/database"
	"github.com/Suvodeep90/expertiza-E1792/internal/handler"
	"github.com/Suvodeep90/expertiza-E1792/internal/middleware"
	"github.com/Suvodeep90/expertiza-E1792/internal/repository"
	"github.com/Suvodeep90/expertiza-E1792/internal/router"
	"github.com/Suvodeep90/expertiza-E1792/internal/service"
	"github.com/Suvodeep90/expertiza-E1792/pkg/summary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, cfg.DatabaseDebug)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured; assignment reports will not be cached")
	}

	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()
		publisher = conn
	}

	var summarizer summary.Summarizer = summary.NewOfflineSummarizer()
	if cfg.OpenAIAPIKey != "" {
		openAI, err := summary.NewOpenAISummarizer(summary.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create review summarizer: %v", err)
		}
		summarizer = openAI
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	authorizer := service.NewRoleAuthorizer()

	assignmentRepo := repository.NewAssignmentRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	penaltyPolicy := service.NewDeadlinePenaltyPolicy(assignmentRepo, responseRepo)
	penaltyService := service.NewPenaltyService(participantRepo, penaltyRepo, penaltyPolicy, publisher, logger)
	reportService := service.NewGradeReportService(service.GradeReportRepositories{
		Assignments:  assignmentRepo,
		Participants: participantRepo,
		Responses:    responseRepo,
		Penalties:    penaltyRepo,
	}, penaltyService, authorizer, summarizer, redisClient, cfg.ReportCacheTTL, logger)
	activityService := service.NewActivityService(activityRepo, authorizer, validate, logger)
	overrideService := service.NewGradeOverrideService(participantRepo, authorizer, activityService, reportService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		GradeReportHandler:   handler.NewGradeReportHandler(reportService, activityService, logger),
		GradeOverrideHandler: handler.NewGradeOverrideHandler(overrideService, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
		HealthChecks:         dependencyChecks(db, redisClient),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func dependencyChecks(db *gorm.DB, redisClient *redis.Client) map[string]handler.DependencyCheck {
	checks := map[string]handler.DependencyCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["report_cache"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
