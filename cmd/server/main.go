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

	"classifieds-service/config"
	"classifieds-service/internal/api"
	"classifieds-service/internal/broker"
	"classifieds-service/internal/mailer"
	"classifieds-service/internal/payment"
	"classifieds-service/internal/redisclient"
	"classifieds-service/internal/service"
	"classifieds-service/internal/store"
	"classifieds-service/internal/util"
	"classifieds-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting classifieds service")

	tp, err := util.InitTracer("classifieds-service", cfg.Observ.JaegerEndpoint)
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

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAds)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	paymentGateway := payment.NewHTTPGateway(
		cfg.Payment.APIBaseURL,
		cfg.Payment.APIKey,
		time.Duration(cfg.Payment.TimeoutSeconds)*time.Second,
	)

	mailClient := mailer.NewHTTPMailer(
		cfg.Email.APIEndpoint,
		cfg.Email.APIKey,
		cfg.Email.Sender,
		time.Duration(cfg.Email.TimeoutSeconds)*time.Second,
	)

	checkoutService := service.NewCheckoutService(db, paymentGateway, eventPublisher,
		cfg.Payment.SuccessURL, cfg.Payment.CancelURL)
	webhookService := service.NewWebhookService(db, mailClient, eventPublisher,
		cfg.Payment.WebhookSecret)
	moderationService := service.NewModerationService(db, paymentGateway, mailClient,
		eventPublisher, redisClient,
		time.Duration(cfg.Business.ModerationLockTTLSeconds)*time.Second)
	listingService := service.NewListingService(db, redisClient,
		time.Duration(cfg.Business.ListingCacheTTLSeconds)*time.Second)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	cacheConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicAds, cfg.Kafka.ConsumerGroup)
	cacheWorker := worker.NewCacheWorker(cacheConsumer, redisClient)
	go func() {
		if err := cacheWorker.Start(workerCtx); err != nil {
			log.Printf("Cache worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(checkoutService, webhookService, moderationService, listingService)
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
	cacheWorker.Stop()

	log.Println("Server exited")
}
