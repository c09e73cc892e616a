package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"user-portal/internal/config"
	"user-portal/internal/db"
	"user-portal/internal/email"
	portalhttp "user-portal/internal/http"
	"user-portal/internal/repository"
	"user-portal/internal/service"
	"user-portal/internal/session"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var userRepo repository.UserRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer pool.Close()

		pgRepo := repository.NewPgUserRepository(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			logger.Fatal("schema bootstrap", zap.Error(err))
		}
		userRepo = pgRepo
		logger.Info("using postgres credential store")
	} else {
		client, err := db.NewMongoClient(ctx, cfg)
		if err != nil {
			logger.Fatal("mongo connect", zap.Error(err))
		}
		defer client.Disconnect(ctx)

		mongoRepo := repository.NewMongoUserRepository(client, cfg.MongoDB)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			logger.Fatal("index bootstrap", zap.Error(err))
		}
		userRepo = mongoRepo
		logger.Info("using mongo credential store", zap.String("db", cfg.MongoDB))
	}

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	flashes := session.NewMemoryStore(sessionTTL)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			flashes = session.NewRedisStore(redisClient, sessionTTL)
		}
		cancel()
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	tmpl, err := portalhttp.LoadTemplates()
	if err != nil {
		logger.Fatal("template parse", zap.Error(err))
	}

	userSvc := service.NewUserService(logger, userRepo, emailSender)
	handlers := portalhttp.NewHandlers(logger, userSvc, flashes)
	router := portalhttp.NewRouter(logger, tmpl, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
