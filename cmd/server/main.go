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

	"github.com/resultshub/chat-server-go/internal/config"
	"github.com/resultshub/chat-server-go/internal/database"
	"github.com/resultshub/chat-server-go/internal/handler"
	"github.com/resultshub/chat-server-go/internal/jobs"
	"github.com/resultshub/chat-server-go/internal/metrics"
	"github.com/resultshub/chat-server-go/internal/middleware"
	"github.com/resultshub/chat-server-go/internal/push"
	"github.com/resultshub/chat-server-go/internal/redis"
	"github.com/resultshub/chat-server-go/internal/repository"
	"github.com/resultshub/chat-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

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

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	presenceRepo := repository.NewPresenceRepository(db.DB)
	banRepo := repository.NewBanRepository(db.DB)
	reportRepo := repository.NewReportRepository(db.DB)
	broadcastRepo := repository.NewBroadcastRepository(db)
	pushSubRepo := repository.NewPushSubscriptionRepository(db.DB)
	deliveryLogRepo := repository.NewDeliveryLogRepository(db.DB)
	adminRepo := repository.NewAdminRepository(db.DB)

	delivery := push.NewWebPushDelivery(
		cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, cfg.PushTimeout(),
	)

	presenceService := service.NewPresenceService(presenceRepo, banRepo)
	adminService := service.NewAdminService(adminRepo)
	moderationService := service.NewModerationService(banRepo, reportRepo)
	broadcastService := service.NewBroadcastService(broadcastRepo)
	pushService := service.NewPushService(pushSubRepo, deliveryLogRepo, delivery, cfg.PushConcurrency)

	authMiddleware := middleware.NewAdminAuthMiddleware(adminRepo, cfg.AdminToken)
	rateLimitMiddleware := middleware.NewIPRateLimitMiddleware(redisClient.Client, cfg.PublicRateLimitPerMin)

	presenceHandler := handler.NewPresenceHandler(presenceService)
	adminHandler := handler.NewAdminHandler(adminService)
	moderationHandler := handler.NewModerationHandler(moderationService)
	broadcastHandler := handler.NewBroadcastHandler(broadcastService)
	pushHandler := handler.NewPushHandler(pushService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(middleware.BodyLimit)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/presence", func(r chi.Router) {
		r.With(authMiddleware.Handler).Get("/active", presenceHandler.ListActive)
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware.Handler)
			r.Post("/heartbeat", presenceHandler.Heartbeat)
			r.Post("/disconnect", presenceHandler.Disconnect)
		})
	})

	r.Route("/moderation", func(r chi.Router) {
		r.With(rateLimitMiddleware.Handler).Post("/reports", moderationHandler.FileReport)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Post("/ban", moderationHandler.Ban)
			r.Post("/unban", moderationHandler.Unban)
			r.Get("/banned", moderationHandler.ListBanned)
			r.Get("/reports", moderationHandler.ListReports)
			r.Patch("/reports/{id}", moderationHandler.SetReportStatus)
		})
	})

	r.With(authMiddleware.Handler).Post("/admin/accounts", adminHandler.CreateAccount)

	r.With(authMiddleware.Handler).Post("/broadcast", broadcastHandler.Publish)
	r.With(rateLimitMiddleware.Handler).Get("/broadcasts", broadcastHandler.ListRecent)

	r.Route("/push", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware.Handler)
			r.Get("/public-key", pushHandler.PublicKey)
			r.Post("/subscribe", pushHandler.Subscribe)
		})
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Post("/broadcast", pushHandler.Broadcast)
			r.Get("/history", pushHandler.History)
			r.Get("/keys", pushHandler.Keys)
		})
	})

	sweep := jobs.NewPresenceSweep(
		presenceRepo, banRepo, cfg.PresenceStaleAfter(), cfg.PresenceSweepInterval(),
	)
	sweep.Start()
	defer sweep.Stop()

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
