package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"order-service/internal/api/handlers"
	"order-service/internal/cache"
	"order-service/internal/database"
	"order-service/internal/logging"
	"order-service/internal/repository"
	"order-service/internal/service"
)

func main() {
	log, err := logging.NewLogger()
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := database.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	if err := database.Migrate(cfg); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	customerRepo := repository.NewCustomerRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	movementRepo := repository.NewStockMovementRepository(pool)

	products := productRepo
	svc := service.NewOrderService(orderRepo, productRepo, customerRepo, log)

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cfg)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()

		cached := cache.NewCachedProductRepository(productRepo, rdb, log)
		products = cached
		svc = service.NewOrderService(orderRepo, cached, customerRepo, log)
		svc.SetStockCacheInvalidator(cached)
		log.Info("product cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	orderHandler := handlers.NewOrderHandler(svc, log)
	productHandler := handlers.NewProductHandler(products, movementRepo, log)
	customerHandler := handlers.NewCustomerHandler(customerRepo, svc, log)

	router := handlers.NewRouter(orderHandler, productHandler, customerHandler, pool, log)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("order-service listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
