package main

import (
	"context"
	"log"
	"time"

	"gnsons/internal/config"
	"gnsons/internal/logger"
	"gnsons/internal/repositories"
	"gnsons/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := repositories.Open(ctx, repositories.Options{
		Driver:        cfg.DatabaseDriver,
		DSN:           cfg.DatabaseDSN,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		Attempts:      cfg.DBConnectAttempts,
		Backoff:       cfg.DBConnectBackoff,
	}, zlog)
	if err != nil {
		zlog.Fatal("Database unavailable", zap.Error(err))
	}
	defer store.Close(context.Background())

	res, err := seed.Run(ctx, store, zlog)
	if err != nil {
		zlog.Fatal("Setup failed", zap.Error(err))
	}
	if res.AdminCreated {
		zlog.Info("Demo admin login", zap.String("email", seed.AdminEmail), zap.String("password", seed.AdminPassword))
	}
	zlog.Info("Database setup complete")
}
