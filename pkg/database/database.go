package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// ConnectDB подключается к Postgres с несколькими попытками (БД может стартовать позже сервиса).
func ConnectDB(cfg *Config, log *zap.Logger) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	for attempt := 1; attempt <= 5; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			log.Info("Подключение к БД установлено", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
			return db
		}
		log.Warn("Не удалось подключиться к БД, повтор", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	log.Fatal("БД недоступна", zap.Error(err))
	return nil
}

// ConnectDBForMigration — то же подключение, но без пула: короткоживущий процесс мигратора.
func ConnectDBForMigration(cfg *Config, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Info),
	})
	if err != nil {
		log.Fatal("БД недоступна", zap.Error(err))
	}
	return db
}

func CloseDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("Не удалось получить sql.DB для закрытия", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("Ошибка при закрытии соединения с БД", zap.Error(err))
	}
}
