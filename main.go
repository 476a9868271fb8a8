package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"campuspos/m/internal/api"
	"campuspos/m/internal/config"
	"campuspos/m/internal/database"
	"campuspos/m/internal/migrations"
	"campuspos/m/internal/pos"
	"campuspos/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	db := database.Connect(cfg.DatabasePath)
	defer db.Close()

	migrations.Run(db)
	if err := seed.Run(db, logger); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}

	svc := pos.NewService(db, logger)
	handler := api.New(db, svc, cfg, logger)

	logger.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
