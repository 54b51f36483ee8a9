package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/encrypted69-code/upirefer/internal/bot"
	"github.com/encrypted69-code/upirefer/internal/config"
	"github.com/encrypted69-code/upirefer/internal/database"
	"github.com/encrypted69-code/upirefer/internal/logger"
	"github.com/encrypted69-code/upirefer/internal/payout"
	"github.com/encrypted69-code/upirefer/internal/service"
	"github.com/encrypted69-code/upirefer/internal/storage"
	"github.com/encrypted69-code/upirefer/internal/worker"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}

	// Connect to Database
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Log.Fatal("Could not connect to database", zap.Error(err))
	}

	// Connect to Redis
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Log.Fatal("Could not connect to redis", zap.Error(err))
	}

	store := storage.New(db)
	svc := service.New(store, rdb, payout.LogGateway{}, cfg)

	b, err := bot.NewBot(cfg.BotToken, cfg.BotUsername, svc)
	if err != nil {
		logger.Log.Fatal("Could not create bot", zap.Error(err))
	}

	reconciler := worker.NewReconciler(svc, rdb, b.Instance, cfg.AdminIDs)
	go reconciler.Start(context.Background())

	logger.Log.Info("Service started successfully")
	b.Start()
}
