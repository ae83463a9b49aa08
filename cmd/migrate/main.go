package main

import (
	"context"
	"os"

	"github.com/varunhp06/campus-connect-sub000/config"
	"github.com/varunhp06/campus-connect-sub000/internal/migrate"
	"github.com/varunhp06/campus-connect-sub000/pkg/database"
	"github.com/varunhp06/campus-connect-sub000/pkg/logger"

	"go.uber.org/zap"

	"github.com/joho/godotenv"
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

	db := database.ConnectDBForMigration(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()

	opts := migrate.DefaultMigrateOptions()

	if err := migrate.MigrateCampusDB(ctx, db, log, opts); err != nil {
		log.Fatal("Ошибка при выполнении миграции", zap.Error(err))
	}

	log.Info("Миграция успешно завершена")
}
