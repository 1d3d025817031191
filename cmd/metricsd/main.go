package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/activity"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/classifier"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/collector"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/config"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/handler"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/logger"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/queue/redis"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/store"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.ServiceEnvironment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		if err := log.Sync(); err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting metrics pipeline",
		zap.String("environment", cfg.ServiceEnvironment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Relational store.
	db, err := store.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	gateway := store.NewGormGateway(db, store.AggregatorByName(cfg.PerfAvgStrategy), log)
	log.Info("Database connected and schema migrated",
		zap.String("avg_strategy", cfg.PerfAvgStrategy))

	// Broker handle. Reachability is decided once, at collector init.
	broker, err := redis.NewClient(cfg.BrokerURL, log)
	if err != nil {
		log.Fatal("Failed to create broker client", zap.Error(err))
	}
	defer func() {
		if err := broker.Close(); err != nil {
			log.Error("Failed to close broker client", zap.Error(err))
		}
	}()

	// Classification engine.
	var engine classifier.Engine
	if cfg.ClassifierAPIKey != "" || cfg.ClassifierBaseURL != "" {
		engine, err = classifier.NewLLMEngine(classifier.Config{
			BaseURL: cfg.ClassifierBaseURL,
			APIKey:  cfg.ClassifierAPIKey,
			Model:   cfg.ClassifierModel,
		}, log)
		if err != nil {
			log.Fatal("Failed to create classification engine", zap.Error(err))
		}
	} else {
		log.Warn("No classifier configured, classification events will be dropped")
	}

	cache := activity.NewCache()
	processor := worker.NewProcessor(gateway, engine, cache, log)

	coll := collector.New(broker, processor, cache, log)
	coll.Init(ctx)

	pool := worker.NewPool(broker, processor, worker.PoolConfig{
		BatchSize:                 cfg.CollectorBatchSize,
		PollTimeout:               cfg.PollTimeout(),
		ClassificationPollTimeout: cfg.ClassificationPollTimeout(),
	}, log)

	cleanup := worker.NewCleanupWorker(cache, cfg.CleanupInterval(), cfg.SessionCacheTTL(), log)

	scanner := worker.NewIdleScanner(gateway, coll, worker.ScannerConfig{
		Interval:      cfg.IdleScanInterval(),
		IdleThreshold: cfg.IdleThreshold(),
		MaxSessions:   cfg.IdleScanMaxSessions,
		MinMessages:   cfg.IdleScanMinMessages,
	}, log)

	h := handler.NewHandler(coll, coll, pool.Liveness, log)
	server := &http.Server{
		Addr:    ":" + cfg.ServiceAPIPort,
		Handler: h,
	}

	g, gctx := errgroup.WithContext(ctx)

	if coll.Degraded() {
		log.Warn("Broker unreachable, worker pool not started; all events take the direct path")
	} else {
		g.Go(func() error { return pool.Start(gctx) })
	}
	g.Go(func() error { return cleanup.Run(gctx) })
	g.Go(func() error { return scanner.Run(gctx) })
	g.Go(func() error {
		log.Info("API server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down gracefully")
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error("Failed to shut down API server", zap.Error(err))
	}
	cancel()

	if err := g.Wait(); err != nil {
		log.Error("Shutdown finished with error", zap.Error(err))
	}
	log.Info("Metrics pipeline stopped")
}
