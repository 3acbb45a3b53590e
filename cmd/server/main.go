package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edulink/linking-server-go/internal/audit"
	"github.com/edulink/linking-server-go/internal/config"
	"github.com/edulink/linking-server-go/internal/database"
	"github.com/edulink/linking-server-go/internal/handler"
	"github.com/edulink/linking-server-go/internal/jobs"
	"github.com/edulink/linking-server-go/internal/middleware"
	"github.com/edulink/linking-server-go/internal/notify"
	redisclient "github.com/edulink/linking-server-go/internal/redis"
	"github.com/edulink/linking-server-go/internal/repository"
	"github.com/edulink/linking-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	if version, err := db.MigrationVersion(context.Background()); err == nil {
		log.Info().Int64("version", version).Msg("migrations applied")
	}

	var redisClient *redisclient.Client
	if cfg.EventsEnabled() {
		redisClient, err = redisclient.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
	} else {
		log.Info().Msg("redis not configured, event publishing disabled")
	}

	userRepo := repository.NewUserRepository(db.DB)
	linkingCodeRepo := repository.NewLinkingCodeRepository(db.DB)
	linkRequestRepo := repository.NewLinkRequestRepository(db.DB)

	auditor := audit.New(redisClient)
	notifier := notify.NewPublisher(redisClient)

	linkingService := service.NewLinkingService(
		db, userRepo, linkingCodeRepo, linkRequestRepo,
		service.NewCodeGenerator(), service.NewIDGenerator(),
		auditor, notifier, cfg.LinkingCodeTTL(),
	)

	studentHandler := handler.NewStudentHandler(linkingService)
	parentHandler := handler.NewParentHandler(linkingService)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/student", studentHandler.Routes())
		r.Mount("/parent", parentHandler.Routes())
	})

	statsJob := jobs.NewStatsJob(linkingCodeRepo, linkRequestRepo, cfg.StatsInterval())
	statsJob.Start()
	defer statsJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
