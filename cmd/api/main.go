package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"pix-charge-api/internal/database"
	"pix-charge-api/internal/handler"
	"pix-charge-api/internal/infrastructure/cache"
	"pix-charge-api/internal/infrastructure/queue"
	"pix-charge-api/internal/logger"
	"pix-charge-api/internal/repo"
	"pix-charge-api/internal/service"
	"pix-charge-api/internal/worker"
)

func main() {
	log := logger.New()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres()
	if err != nil {
		log.Fatal("postgres", zap.Error(err))
	}
	defer db.Close()

	mongoDB, err := database.NewMongo(ctx)
	if err != nil {
		log.Fatal("mongo", zap.Error(err))
	}
	defer mongoDB.Client().Disconnect(context.Background())

	viewCache, err := cache.NewRedis(ctx, cache.Config{
		Host:     getenv("REDIS_HOST", "localhost"),
		Port:     getenv("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer viewCache.Close()

	rabbit, err := queue.NewRabbitMQ(queue.Config{
		Host:     getenv("RABBITMQ_HOST", "localhost"),
		Port:     getenv("RABBITMQ_PORT", "5672"),
		User:     getenv("RABBITMQ_USER", "guest"),
		Password: getenv("RABBITMQ_PASS", "guest"),
	}, log)
	if err != nil {
		log.Fatal("rabbitmq", zap.Error(err))
	}
	defer rabbit.Close()

	chargeRepo := repo.NewChargeRepo(db)
	simulationLogRepo := repo.NewSimulationLogRepo(mongoDB)
	chargeService := service.NewChargeService(chargeRepo, viewCache, rabbit, log)

	simulationWorker := worker.NewPaymentSimulationWorker(rabbit, chargeRepo, simulationLogRepo, log)
	if err := simulationWorker.Start(ctx); err != nil {
		log.Fatal("start simulation worker", zap.Error(err))
	}

	chargeHandler := handler.NewChargeHandler(chargeService, log)
	router := handler.NewRouter(chargeHandler, database.New(db))

	server := &http.Server{
		Addr:    ":" + getenv("PORT", "3000"),
		Handler: router,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
