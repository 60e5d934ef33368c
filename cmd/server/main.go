package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/internal/analytics"
	"storefront-service/internal/api"
	"storefront-service/internal/backend"
	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	tp, err := util.InitTracer("storefront-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	storage, closeStorage, err := newCartStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cart storage: %v", err)
	}
	defer closeStorage()
	log.Printf("Cart storage initialized: %s", cfg.Storefront.CartStorage)

	cartStore := cart.NewStore(storage, cfg.Storefront.CartTTL)

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	log.Printf("Backend client initialized: %s", cfg.Backend.BaseURL)

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	events := analytics.NewPublisher(analytics.NewKafkaSink(producer), cfg.Storefront.Currency)

	catalogService := catalog.NewService(backendClient, events)
	checkoutService := checkout.NewService(backendClient, cartStore, events, cfg.Storefront.Country)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	forwarder := analytics.NewForwarder(
		analytics.NewTracker("meta", cfg.Trackers.MetaURL),
		analytics.NewTracker("google", cfg.Trackers.GoogleURL),
	)
	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	trackerWorker := worker.NewTrackerWorker(consumer, forwarder)
	go func() {
		if err := trackerWorker.Start(workerCtx); err != nil {
			log.Printf("Tracker worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(catalogService, cartStore, checkoutService, backendClient, events)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	trackerWorker.Stop()

	log.Println("Server exited")
}

// newCartStorage picks the cart persistence backend from config
func newCartStorage(cfg *config.Config) (cart.Storage, func(), error) {
	switch cfg.Storefront.CartStorage {
	case "postgres":
		storage, err := cart.NewPostgresStorage(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() { storage.Close() }, nil
	default:
		storage, err := cart.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() { storage.Close() }, nil
	}
}
