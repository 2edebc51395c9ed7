package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"gnsons/internal/config"
	"gnsons/internal/logger"
	"gnsons/internal/repositories"
	"gnsons/internal/server"
	"gnsons/internal/services"
	"gnsons/pkg/mailer"
	"gnsons/pkg/rabbitmq"
	"gnsons/pkg/redisstore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repositories.Open(ctx, storeOptions(cfg), zlog)
	if err != nil {
		zlog.Fatal("Database unavailable", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			zlog.Error("Error closing database", zap.Error(err))
		}
	}()

	smtp := newMailer(cfg)
	var queue *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		queue, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, zlog)
		if err != nil {
			zlog.Warn("RabbitMQ unavailable, sending notifications directly", zap.Error(err))
			queue = nil
		} else {
			defer queue.Close()
		}
	}
	notifier := selectNotifier(smtp, queue, zlog)

	if queue != nil {
		deliver := services.NewLogNotifier(zlog).Notify
		if smtp != nil {
			deliver = smtp.Send
		}
		go func() {
			zlog.Info("Starting notification consumer")
			if err := queue.ConsumeNotifications(ctx, deliver); err != nil {
				zlog.Error("Notification consumer stopped", zap.Error(err))
			}
		}()
	}

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		redisStorage, err := redisstore.New(ctx, cfg.RedisURL, "gnsons:ratelimit")
		if err != nil {
			zlog.Warn("Redis unavailable, rate limiting in memory", zap.Error(err))
		} else {
			defer redisStorage.Close()
			limiterStorage = redisStorage
		}
	}

	app, err := server.New(server.Deps{
		Config:         cfg,
		Store:          store,
		Notifier:       notifier,
		LimiterStorage: limiterStorage,
		Log:            zlog,
	})
	if err != nil {
		zlog.Fatal("Failed to build server", zap.Error(err))
	}

	go func() {
		zlog.Info("Starting server", zap.String("addr", cfg.AppPort), zap.String("database", cfg.DatabaseDriver))
		if err := app.Listen(cfg.AppPort); err != nil {
			zlog.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server...")

	if cfg.ShutdownTimeout > 0 {
		err = app.ShutdownWithTimeout(cfg.ShutdownTimeout)
	} else {
		err = app.Shutdown()
	}
	if err != nil {
		zlog.Error("Error during Fiber shutdown", zap.Error(err))
	}
	zlog.Info("Server gracefully stopped")
}

func storeOptions(cfg *config.Config) repositories.Options {
	return repositories.Options{
		Driver:        cfg.DatabaseDriver,
		DSN:           cfg.DatabaseDSN,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		Attempts:      cfg.DBConnectAttempts,
		Backoff:       cfg.DBConnectBackoff,
	}
}

// newMailer returns nil when no SMTP host is configured.
func newMailer(cfg *config.Config) *mailer.SMTPMailer {
	if cfg.SMTPHost == "" {
		return nil
	}
	return mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		FromName: cfg.MailFromName,
	})
}

// selectNotifier prefers the queue, then direct SMTP, then logging only.
func selectNotifier(smtp *mailer.SMTPMailer, queue *rabbitmq.Client, zlog *zap.Logger) services.Notifier {
	switch {
	case queue != nil:
		return queue
	case smtp != nil:
		return services.NotifierFunc(smtp.Send)
	default:
		return services.NewLogNotifier(zlog)
	}
}
