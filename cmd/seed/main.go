package main

import (
	"context"
	"os"

	"tyrehub/config"
	"tyrehub/internal/database"
	"tyrehub/internal/logger"
	"tyrehub/internal/migrate"
	"tyrehub/internal/repository"
	"tyrehub/internal/seed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.Connect(&cfg.DB, log)
	defer database.Close(db, log)

	ctx := context.Background()
	if err := migrate.Migrate(ctx, db, log, migrate.DefaultOptions()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if err := seed.Run(ctx, repository.New(db), log); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed completed")
}
