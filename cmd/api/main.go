package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/cache"
	"github.com/edupulse/dropout-risk-api/internal/config"
	"github.com/edupulse/dropout-risk-api/internal/database"
	"github.com/edupulse/dropout-risk-api/internal/handler"
	"github.com/edupulse/dropout-risk-api/internal/middleware"
	"github.com/edupulse/dropout-risk-api/internal/models"
	"github.com/edupulse/dropout-risk-api/internal/prediction"
	"github.com/edupulse/dropout-risk-api/internal/repository"
	"github.com/edupulse/dropout-risk-api/internal/router"
	"github.com/edupulse/dropout-risk-api/internal/service"
	"github.com/edupulse/dropout-risk-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Student{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, high-risk alerts disabled")
	}

	bundle, err := prediction.LoadBundle(cfg.ModelDir, logger)
	if err != nil {
		log.Fatalf("failed to load model bundle: %v", err)
	}
	engine := prediction.NewEngine(bundle, prediction.Thresholds{
		High:   cfg.RiskHighThreshold,
		Medium: cfg.RiskMediumThreshold,
	}, logger)
	if !engine.Loaded() {
		logger.Warn().Str("dir", cfg.ModelDir).Msg("model bundle incomplete, predictions unavailable")
	}

	var insights service.InsightGenerator
	if cfg.OpenAIAPIKey != "" {
		generator, err := ai.NewInsightGenerator(ai.InsightConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create insight generator: %v", err)
		}
		insights = generator
	}

	studentRepo := repository.NewStudentRepository(db)
	predictionCache := cache.New(redisClient, cfg.PredictionCacheTTL, logger)
	alerts := service.NewAlertPublisher(natsConn, cfg.AlertSubject, logger)

	studentService := service.NewStudentService(studentRepo, logger)
	seedService := service.NewSeedService(studentRepo, logger)
	predictionService := service.NewPredictionService(studentRepo, engine, predictionCache, alerts, insights, logger)

	studentHandler := handler.NewStudentHandler(studentService, logger)
	predictionHandler := handler.NewPredictionHandler(predictionService, logger)
	adminHandler := handler.NewAdminHandler(predictionService, seedService, cfg.SeedFile, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:    studentHandler,
		PredictionHandler: predictionHandler,
		AdminHandler:      adminHandler,
		ModelStatus:       engine,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
