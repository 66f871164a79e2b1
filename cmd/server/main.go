package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixitnow/fixitnow/internal/api"
	"github.com/fixitnow/fixitnow/internal/core/ports"
	"github.com/fixitnow/fixitnow/internal/core/service"
	"github.com/fixitnow/fixitnow/internal/infrastructure/config"
	"github.com/fixitnow/fixitnow/internal/infrastructure/db/dualstore"
	"github.com/fixitnow/fixitnow/internal/infrastructure/db/memory"
	mongodb "github.com/fixitnow/fixitnow/internal/infrastructure/db/mongo"
	redisdb "github.com/fixitnow/fixitnow/internal/infrastructure/db/redis"
	"github.com/fixitnow/fixitnow/internal/infrastructure/notify"
	"github.com/fixitnow/fixitnow/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB (durable backend) ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	requestRepo := mongodb.NewRequestRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	if err := requestRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure request indexes failed")
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes failed")
	}

	// --- Redis (notification dedup) ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Storage: MongoDB fronted by the in-process fallback ---
	requestStore := dualstore.NewRequestStore(requestRepo, memory.NewRequestStore(), log)
	userStore := dualstore.NewUserStore(userRepo, memory.NewUserStore(), log)

	// --- Notification sink ---
	var notifier ports.Notifier
	if cfg.SNS.TopicARN != "" {
		notifier, err = notify.NewSNSNotifier(ctx, notify.Config{
			Region:   cfg.SNS.Region,
			TopicARN: cfg.SNS.TopicARN,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("sns notifier init failed")
		}
	} else {
		log.Info().Msg("SNS_TOPIC_ARN not set, notifications will be logged only")
		notifier = notify.NewLogNotifier(log)
	}
	notifier = notify.NewDeduped(notifier, redisdb.NewNotificationDedup(rdb), log)

	if cfg.SeedSample {
		if err := service.SeedSampleData(ctx, userStore, requestStore, log); err != nil {
			log.Fatal().Err(err).Msg("seeding sample data failed")
		}
	}

	e := api.NewRouter(api.Dependencies{
		Mongo:        db,
		Redis:        rdb,
		RequestStore: requestStore,
		UserStore:    userStore,
		Notifier:     notifier,
		JWTSecret:    cfg.JWTSecret,
		Logger:       log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
