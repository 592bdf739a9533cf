package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ChickenCoderzzz/CoachAssist/internal/config"
	"github.com/ChickenCoderzzz/CoachAssist/internal/db"
	"github.com/ChickenCoderzzz/CoachAssist/internal/email"
	internalhttp "github.com/ChickenCoderzzz/CoachAssist/internal/http"
	"github.com/ChickenCoderzzz/CoachAssist/internal/media"
	"github.com/ChickenCoderzzz/CoachAssist/internal/repository"
	"github.com/ChickenCoderzzz/CoachAssist/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connection failed")
	}
	defer pool.Close()
	store := repository.NewStore(pool)

	mailer, err := email.NewSESMailer(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("ses init failed")
	}

	objects, err := storage.NewS3Store(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("s3 init failed")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		cancel()
		defer redisClient.Close()
	}

	server := internalhttp.NewServer(cfg, store, mailer, objects, media.NewFFmpegClipper(cfg.FFmpegPath), redisClient, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
