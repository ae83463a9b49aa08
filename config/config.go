package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/varunhp06/campus-connect-sub000/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	JWT JWT

	Redis Redis

	KafkaBrokers []string
	KafkaTopic   string
}

type DB struct {
	database.Config
}

type JWT struct {
	AccessSecret string
	Issuer       string
	Audience     string
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		JWT: JWT{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", log),
			Issuer:       getEnv("JWT_ISSUER", log),
			Audience:     getEnv("JWT_AUDIENCE", log),
		},
		Redis: Redis{
			Enabled:    os.Getenv("REDIS_ENABLED") == "true",
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 60),
		},
		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   os.Getenv("KAFKA_TOPIC_NOTIFICATIONS"),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
