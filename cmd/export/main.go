package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/your-org/airq-dashboard/internal/config"
	"github.com/your-org/airq-dashboard/internal/csvwriter"
	"github.com/your-org/airq-dashboard/internal/simulator"
	"github.com/your-org/airq-dashboard/pkg/logger"
)

func main() {
	// --- Argument Parsing ---
	configPath := flag.String("config", "", "Path to the configuration file (defaults are used when empty)")
	out := flag.String("out", csvwriter.Stdout, "Output file, or - for stdout")
	rows := flag.Int("n", 0, "Number of observations to export (overrides simulator.dataset_size)")
	seed := flag.Int64("seed", 0, "Random seed (overrides simulator.seed)")
	compress := flag.Bool("snappy", false, "Write snappy framed output")
	flag.Parse()

	// --- Config and Logger Setup ---
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)
	defer logger.Sync()

	n := cfg.Simulator.DatasetSize
	if *rows > 0 {
		n = *rows
	}
	s := cfg.Simulator.Seed
	if *seed != 0 {
		s = *seed
	}
	if s == 0 {
		s = time.Now().UnixNano()
	}

	cities, err := simulator.ResolveCities(cfg.Simulator.Cities)
	if err != nil {
		logger.Fatalf("Invalid simulator configuration: %v", err)
	}
	sim := simulator.New(rand.New(rand.NewSource(s)), cities...)

	// --- CSV Writer Setup ---
	writer, err := csvwriter.NewWriter(*out, *compress, logger.Zap())
	if err != nil {
		logger.Fatalf("Failed to open output: %v", err)
	}

	if err := writer.WriteHeader(); err != nil {
		logger.Fatalf("Failed to write CSV header: %v", err)
	}
	for i := 0; i < n; i++ {
		if err := writer.WriteObservation(sim.Observe()); err != nil {
			logger.Fatalf("Failed to write CSV record: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		logger.Fatalf("Failed to finish CSV output: %v", err)
	}

	logger.Infof("Successfully exported %d observations (seed %d).", n, s)
}
