// Package main is the entry point of the air-quality dashboard service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/airq-dashboard/internal/alert"
	"github.com/your-org/airq-dashboard/internal/config"
	"github.com/your-org/airq-dashboard/internal/dashboard"
	"github.com/your-org/airq-dashboard/internal/http/handler"
	"github.com/your-org/airq-dashboard/internal/learning"
	"github.com/your-org/airq-dashboard/internal/simulator"
	"github.com/your-org/airq-dashboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger.SetGlobalLogLevel(cfg.LogLevel)
	defer logger.Sync()
	zapLogger := logger.Zap()
	logger.Info("Air quality dashboard starting...")
	logger.Infof("Loaded configuration from: %s", *configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Simulator and classifier ---
	cities, err := simulator.ResolveCities(cfg.Simulator.Cities)
	if err != nil {
		logger.Fatalf("Invalid simulator configuration: %v", err)
	}
	seed := cfg.Simulator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Infof("Simulator seed: %d, cities: %d", seed, len(cities))

	sim := simulator.New(rand.New(rand.NewSource(seed)), cities...)
	classifier := learning.NewOneVsAllClassifier(
		learning.WithRand(rand.New(rand.NewSource(seed+1))),
		learning.WithParallelTraining(cfg.Training.Parallel.Bool()),
		learning.WithLogger(zapLogger.Named("classifier")),
	)
	evaluator := learning.NewEvaluator(rand.New(rand.NewSource(seed + 2)))

	// --- Pipeline ---
	records := learning.NewInMemoryStream[learning.LabeledRecord](cfg.Feed.BufferSize)
	results := learning.NewInMemoryStream[learning.TrainingResult](8)
	notifier := alert.NewLogNotifier(zapLogger)
	defer notifier.Close()

	pipeline := learning.NewPipeline(records, results, classifier, evaluator, notifier, learning.PipelineConfig{
		UpdateInterval: cfg.Training.RetrainInterval,
		WindowSize:     cfg.Training.WindowSize,
		SplitRatio:     cfg.Training.SplitRatio,
		MinAccuracy:    cfg.Training.MinAccuracy,
		TrendAlpha:     cfg.Training.TrendAlpha,
	}, zapLogger.Named("pipeline"))

	state := dashboard.NewState(zapLogger.Named("dashboard"))
	resultsCh, err := results.Subscribe(ctx)
	if err != nil {
		logger.Fatalf("Failed to subscribe to training results: %v", err)
	}
	go state.Run(ctx, resultsCh)

	pipeline.Seed(sim.Dataset(cfg.Simulator.DatasetSize))
	initial, err := pipeline.RunOnce(ctx)
	if err != nil {
		logger.Fatalf("Initial training failed: %v", err)
	}
	logger.Infof("Initial model %s: accuracy=%.3f f1=%.3f", initial.Version, initial.Report.Accuracy, initial.Report.F1)

	go pipeline.Start(ctx)
	defer pipeline.Stop()

	// --- Simulator feed ---
	if cfg.Feed.BatchSize > 0 {
		feeder := simulator.NewFeeder(sim, records, cfg.Feed.Interval, cfg.Feed.BatchSize, zapLogger.Named("feed"))
		if err := feeder.Start(ctx); err != nil {
			logger.Fatalf("Failed to start simulator feed: %v", err)
		}
		defer feeder.Stop()
	}

	// --- HTTP server ---
	router, err := handler.NewRouter(state, classifier, zapLogger.Named("http"))
	if err != nil {
		logger.Fatalf("Failed to build HTTP router: %v", err)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("Dashboard server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Dashboard server failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logger.Infof("Received signal %s, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown failed: %v", err)
	}
	cancel()
	if n := records.Dropped(); n > 0 {
		logger.Warnf("Record stream dropped %d records for slow subscribers", n)
	}
	logger.Info("Air quality dashboard stopped.")
}
