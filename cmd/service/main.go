package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/varunhp06/campus-connect-sub000/config"
	"github.com/varunhp06/campus-connect-sub000/internal/cache"
	"github.com/varunhp06/campus-connect-sub000/internal/producer"
	"github.com/varunhp06/campus-connect-sub000/internal/repository"
	"github.com/varunhp06/campus-connect-sub000/internal/router"
	"github.com/varunhp06/campus-connect-sub000/internal/service"
	"github.com/varunhp06/campus-connect-sub000/internal/token"
	"github.com/varunhp06/campus-connect-sub000/pkg/database"
	"github.com/varunhp06/campus-connect-sub000/pkg/logger"

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
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	// Кеш доступности опционален: без него все чтения идут в postgres
	var availCache service.AvailabilityCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rc.Close()
		availCache = rc
	}

	// Шина событий опциональна (пустой KAFKA_BROKERS отключает публикацию)
	var events service.EventBus
	if len(cfg.KafkaBrokers) > 0 {
		np := producer.NewNotificationProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer np.Close()
		events = np
	}

	catalogSvc := service.NewCatalogService(repos, availCache)
	rentalSvc := service.NewRentalService(repos, events, availCache)
	returnSvc := service.NewReturnService(repos, events, availCache)
	orderSvc := service.NewOrderService(repos, events, availCache)

	verifier := token.NewHSVerifier(cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience)

	r := router.Router(router.Services{
		Catalog: catalogSvc,
		Rental:  rentalSvc,
		Returns: returnSvc,
		Orders:  orderSvc,
	}, verifier, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("HTTP server stopped gracefully")
}
