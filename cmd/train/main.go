// Command train runs one generate, train, evaluate cycle and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/your-org/airq-dashboard/internal/config"
	"github.com/your-org/airq-dashboard/internal/csvwriter"
	"github.com/your-org/airq-dashboard/internal/indicator"
	"github.com/your-org/airq-dashboard/internal/learning"
	"github.com/your-org/airq-dashboard/internal/simulator"
	"github.com/your-org/airq-dashboard/pkg/logger"
)

type options struct {
	configPath string
	size       int
	seed       int64
	noColor    bool
	dataPath   string
	compressed bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to the configuration file (defaults are used when empty)")
	flag.IntVar(&opts.size, "n", 0, "Number of records to generate (overrides simulator.dataset_size)")
	flag.Int64Var(&opts.seed, "seed", 0, "Random seed (overrides simulator.seed)")
	flag.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flag.StringVar(&opts.dataPath, "data", "", "Train on a CSV dataset written by the export command instead of simulating one (- for stdin)")
	flag.BoolVar(&opts.compressed, "snappy", false, "The -data file is snappy framed")
	flag.Parse()

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if opts.size > 0 {
		cfg.Simulator.DatasetSize = opts.size
	}
	if opts.seed != 0 {
		cfg.Simulator.Seed = opts.seed
	}
	if opts.noColor {
		color.NoColor = true
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	var records []learning.LabeledRecord
	if opts.dataPath != "" {
		loaded, err := csvwriter.ReadRecords(ctx, opts.dataPath, opts.compressed, logger.Zap())
		if err != nil {
			logger.Fatalf("Failed to read dataset: %v", err)
		}
		if len(loaded) == 0 {
			logger.Fatalf("Dataset %s contains no usable records", opts.dataPath)
		}
		records = loaded
	}

	result, err := run(ctx, cfg, records)
	if err != nil {
		logger.Fatalf("Training failed: %v", err)
	}
	printReport(os.Stdout, result, cfg.Training.MinAccuracy)
}

// run splits records in order and trains a fresh classifier. When records is
// empty a dataset is generated by the simulator.
func run(ctx context.Context, cfg *config.Config, records []learning.LabeledRecord) (learning.TrainingResult, error) {
	seed := cfg.Simulator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if len(records) == 0 {
		cities, err := simulator.ResolveCities(cfg.Simulator.Cities)
		if err != nil {
			return learning.TrainingResult{}, err
		}
		sim := simulator.New(rand.New(rand.NewSource(seed)), cities...)
		records = sim.Dataset(cfg.Simulator.DatasetSize)
	}
	split := int(float64(len(records)) * cfg.Training.SplitRatio)
	train, test := records[:split], records[split:]

	classifier := learning.NewOneVsAllClassifier(
		learning.WithRand(rand.New(rand.NewSource(seed+1))),
		learning.WithParallelTraining(cfg.Training.Parallel.Bool()),
		learning.WithLogger(logger.Zap()),
	)
	start := time.Now()
	if err := classifier.Train(ctx, train); err != nil {
		return learning.TrainingResult{}, err
	}

	return learning.TrainingResult{
		Version:    classifier.Version(),
		TrainedAt:  classifier.TrainedAt(),
		Duration:   time.Since(start),
		TrainSize:  len(train),
		TestSize:   len(test),
		Report:     learning.NewEvaluator(rand.New(rand.NewSource(seed+2))).Evaluate(classifier, test),
		Importance: classifier.FeatureImportance(),
	}, nil
}

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

const barWidth = 30

func printReport(w io.Writer, res learning.TrainingResult, minAccuracy float64) {
	rep := res.Report

	fmt.Fprintln(w, bold("Air quality classifier"))
	fmt.Fprintf(w, "  model      %s\n", cyan(res.Version))
	fmt.Fprintf(w, "  records    %d train / %d test\n", res.TrainSize, res.TestSize)
	fmt.Fprintf(w, "  duration   %s\n\n", res.Duration.Round(time.Millisecond))

	acc := fmt.Sprintf("%.4f", rep.Accuracy)
	switch {
	case rep.Accuracy < minAccuracy:
		acc = red(acc)
	case rep.Accuracy < 0.6:
		acc = yellow(acc)
	default:
		acc = green(acc)
	}
	fmt.Fprintf(w, "  accuracy   %s\n", acc)
	fmt.Fprintf(w, "  precision  %.4f\n", rep.Precision)
	fmt.Fprintf(w, "  recall     %.4f\n", rep.Recall)
	fmt.Fprintf(w, "  f1         %.4f\n\n", rep.F1)

	fmt.Fprintln(w, bold("Per class"))
	for _, m := range rep.PerClass {
		fmt.Fprintf(w, "  %-32s p=%.3f r=%.3f f1=%.3f n=%d\n",
			indicator.CategoryName(m.Class), m.Precision, m.Recall, m.F1, m.Support)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Confusion matrix (rows actual, columns predicted)"))
	fmt.Fprint(w, "       ")
	for c := 0; c < learning.NumClasses; c++ {
		fmt.Fprintf(w, "%6d", c)
	}
	fmt.Fprintln(w)
	for a, row := range rep.ConfusionMatrix {
		fmt.Fprintf(w, "  %3d  ", a)
		for p, n := range row {
			cell := fmt.Sprintf("%6d", n)
			if a == p && n > 0 {
				cell = green(cell)
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Feature importance"))
	for _, fi := range res.Importance {
		bar := strings.Repeat("█", int(fi.Score*barWidth+0.5))
		fmt.Fprintf(w, "  %-12s %s %.3f\n", fi.Name, cyan(bar), fi.Score)
	}
}
