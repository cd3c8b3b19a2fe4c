package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/your-org/airq-dashboard/internal/learning"
	"go.uber.org/zap"
)

// Feeder publishes simulated records to a stream on a fixed schedule.
type Feeder struct {
	gen       learning.RecordGenerator
	stream    learning.Stream[learning.LabeledRecord]
	interval  time.Duration
	batchSize int
	logger    *zap.Logger

	scheduler *gocron.Scheduler
}

// NewFeeder creates a Feeder that publishes batchSize records every interval.
func NewFeeder(gen learning.RecordGenerator, stream learning.Stream[learning.LabeledRecord], interval time.Duration, batchSize int, logger *zap.Logger) *Feeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feeder{
		gen:       gen,
		stream:    stream,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the feed and returns immediately. The schedule stops when
// ctx is done or Stop is called.
func (f *Feeder) Start(ctx context.Context) error {
	_, err := f.scheduler.Every(f.interval).SingletonMode().Do(func() {
		if err := f.publishBatch(ctx); err != nil {
			f.logger.Warn("Failed to publish simulated records", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule simulator feed: %w", err)
	}

	f.scheduler.StartAsync()
	f.logger.Info("Simulator feed started",
		zap.Duration("interval", f.interval),
		zap.Int("batch_size", f.batchSize))

	go func() {
		<-ctx.Done()
		f.Stop()
	}()
	return nil
}

// Stop stops the schedule.
func (f *Feeder) Stop() {
	if f.scheduler.IsRunning() {
		f.scheduler.Stop()
	}
}

func (f *Feeder) publishBatch(ctx context.Context) error {
	for i := 0; i < f.batchSize; i++ {
		r, err := f.gen.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate record: %w", err)
		}
		if err := f.stream.Publish(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
