package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/app"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/alert"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/config"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/schema"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/seed"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/kafka"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/auth"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/middleware"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/tracing"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	seedFile := flag.String("seed", "", "YAML file of bornes and task templates to load at startup")
	flag.Parse()

	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Str("db_driver", cfg.Database.Driver).
		Msg("Starting atelier service")

	// Initialize tracer
	shutdownTracer, err := tracing.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	if err := schema.Migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	if *migrateOnly {
		logger.Logger.Info().Msg("Migrations applied, exiting")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publishers, closeEvents := startEvents(ctx, cfg)
	defer closeEvents()

	handlers, err := app.InitializeHandlers(db, publishers)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handlers")
	}

	if *seedFile != "" {
		file, err := seed.LoadFile(*seedFile)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("file", *seedFile).Msg("Failed to read seed file")
		}
		result, err := handlers.Seeder.Apply(ctx, file)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("file", *seedFile).Msg("Failed to apply seed file")
		}
		logger.Logger.Info().
			Int("bornes", result.Bornes).
			Int("templates", result.Templates).
			Msg("Seed data applied")
	}

	router := app.NewRouter(handlers, sqlDB, middleware.Config{
		EnableTracing:   cfg.JaegerEndpoint != "",
		EnableTimeout:   true,
		TimeoutDuration: cfg.RequestTimeout,
		Auth:            auth.NewValidator(cfg.JWTSecret),
		AuthRequired:    cfg.AuthRequired,
	})

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/index.html").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// startEvents connects to Kafka when brokers are configured. Without brokers
// stock alerts are checked in process and task events are not published.
func startEvents(ctx context.Context, cfg config.Config) (app.Publishers, func()) {
	checker := alert.NewChecker()
	if len(cfg.KafkaBrokers) == 0 {
		logger.Logger.Info().Msg("No KAFKA_BROKERS configured, stock alerts checked in process")
		return app.Publishers{Stock: checker}, func() {}
	}

	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, []string{kafka.TopicStockMovements})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	consumer.RegisterHandler(kafka.EventTypeStockMoved, checker.Handle)
	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	return app.Publishers{Stock: publisher, Tasks: publisher}, func() {
		if err := consumer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		}
		if err := publisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}
}
