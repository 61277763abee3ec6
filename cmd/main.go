package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mhhmod/tes3/internal/catalog"
	"github.com/mhhmod/tes3/internal/events"
	"github.com/mhhmod/tes3/internal/handler"
	"github.com/mhhmod/tes3/internal/mailer"
	"github.com/mhhmod/tes3/internal/notify"
	"github.com/mhhmod/tes3/internal/repository"
	"github.com/mhhmod/tes3/internal/service"
	"github.com/mhhmod/tes3/internal/storefront"
	"github.com/mhhmod/tes3/internal/webhook"
	"github.com/mhhmod/tes3/pkg/config"
	"github.com/mhhmod/tes3/pkg/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Service configuration",
		zap.String("port", cfg.Port),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.Bool("webhook_configured", cfg.WebhookURL != ""))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize components
	store, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open state store", zap.Error(err))
	}

	httpClient := &http.Client{Timeout: cfg.AttemptTimeout}
	cat, err := catalog.Load(ctx, cfg.ProductFeed, catalog.SourceOptions{
		AWSRegion:      cfg.AWSRegion,
		S3Endpoint:     cfg.S3Endpoint,
		S3AccessKey:    cfg.S3AccessKey,
		S3SecretKey:    cfg.S3SecretKey,
		GCSCredentials: cfg.GCSCredentials,
		HTTPClient:     httpClient,
	})
	if err != nil {
		logger.Fatal("Failed to load product catalog", zap.Error(err))
	}

	clock := clockwork.NewRealClock()
	sessions := storefront.NewRegistry(store, cat, logger.Named("storefront"),
		storefront.WithClock(clock),
		storefront.WithToastOptions(
			notify.WithDefaultDuration(cfg.ToastDuration),
			notify.WithWatchdog(cfg.ToastWatchdog),
		))

	cascade, beacon := webhook.NewStandard(httpClient, logger.Named("webhook"), webhook.Settings{
		SimulatedDelay:  cfg.SimulatedDelay,
		AttemptTimeout:  cfg.AttemptTimeout,
		MaxURLLength:    cfg.MaxURLLength,
		BeaconQueueSize: cfg.BeaconQueueSize,
		Clock:           clock,
	})
	delivery := webhook.NewRouter(cascade, map[webhook.Kind]string{
		webhook.KindOrder:    cfg.WebhookURL,
		webhook.KindReturn:   cfg.ReturnWebhookURL,
		webhook.KindExchange: cfg.ExchangeWebhookURL,
	})

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	}

	var m mailer.Mailer = mailer.NopMailer{}
	if cfg.PostmarkToken != "" {
		m = mailer.NewPostmarkMailer(cfg.PostmarkToken, cfg.EmailSender, logger)
	}

	orderService := service.NewOrderService(cat, delivery, publisher, m, clock, logger, service.Settings{
		Courier:  cfg.Courier,
		Currency: cfg.Currency,
	})
	requestService := service.NewRequestService(cat, delivery, publisher, clock, logger, cfg.Currency)

	origins := cfg.Origins()
	allowOrigin := func(origin string) bool {
		return len(origins) == 0 || origins[origin]
	}
	hub := events.NewHub(logger.Named("hub"), func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowOrigin(origin)
	})
	live := handler.NewLiveHandler(hub, sessions, publisher, logger)

	// Setup Gin Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  allowOrigin,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader, middleware.SessionIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, middleware.SessionIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.SessionID())

	// Routes
	handler.Handlers{
		Store:    handler.NewStoreHandler(cat, sessions, logger),
		Orders:   handler.NewOrderHandler(orderService, sessions, logger),
		Requests: handler.NewRequestHandler(requestService, sessions, logger),
		Live:     live,
	}.Register(router.Group("/api/v1"))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sweepIdleSessions(gctx, clock, sessions, cfg.SessionIdleTTL, logger)
		return nil
	})

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
		hub.Close()
		if err := beacon.Close(shutdownCtx); err != nil {
			logger.Warn("Beacon queue not drained", zap.Error(err))
		}
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close publisher", zap.Error(err))
		}
		if err := closeStore(shutdownCtx); err != nil {
			logger.Error("Failed to close state store", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	return logger
}

// sweepIdleSessions drops sessions idle longer than ttl until ctx ends.
func sweepIdleSessions(ctx context.Context, clock clockwork.Clock, sessions *storefront.Registry, ttl time.Duration, logger *zap.Logger) {
	if ttl <= 0 {
		<-ctx.Done()
		return
	}
	ticker := clock.NewTicker(ttl / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := sessions.Sweep(ttl); n > 0 {
				logger.Debug("Swept idle sessions", zap.Int("count", n))
			}
		}
	}
}
