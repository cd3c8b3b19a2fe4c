package learning

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/your-org/airq-dashboard/internal/alert"
	"github.com/your-org/airq-dashboard/internal/indicator"
	"github.com/your-org/airq-dashboard/pkg/ringbuffer"
	"go.uber.org/zap"
)

// TrainingResult は1回の再学習と評価の結果です。
type TrainingResult struct {
	Version    string              `json:"version"`
	TrainedAt  time.Time           `json:"trained_at"`
	Duration   time.Duration       `json:"duration"`
	TrainSize  int                 `json:"train_size"`
	TestSize   int                 `json:"test_size"`
	Report     EvaluationReport    `json:"report"`
	Importance []FeatureImportance `json:"importance"`
	// AccuracyTrend は再学習ごとの正解率の指数移動平均です。
	AccuracyTrend  float64 `json:"accuracy_trend"`
	AccuracyStdDev float64 `json:"accuracy_stddev"`
}

const (
	defaultWindowSize = 5000
	defaultTrendAlpha = 0.3
)

// PipelineConfig はパイプラインの動作設定です。
type PipelineConfig struct {
	UpdateInterval time.Duration
	// WindowSize は学習に使う直近のレコード数の上限です。
	WindowSize int
	// SplitRatio は窓の先頭から学習に使う割合です。残りは評価に使います。
	SplitRatio float64
	// MinAccuracy を下回るとアラートを送ります。
	MinAccuracy float64
	// TrendAlpha は正解率の移動平均で最新値に掛ける重みです。
	TrendAlpha float64
}

// Pipelineはオンライン学習のパイプラインを管理します。
type Pipeline struct {
	records   Stream[LabeledRecord]
	results   Stream[TrainingResult]
	model     Model
	evaluator *Evaluator
	notifier  alert.Notifier
	logger    *zap.Logger
	cfg       PipelineConfig

	updateTicker *time.Ticker

	mu      sync.Mutex
	window  *ringbuffer.RingBuffer[LabeledRecord]
	pending int
	trend   *indicator.EWMA
}

// NewPipelineは新しいPipelineを生成します。
// results が nil の場合、結果はどこにも発行されません。
func NewPipeline(
	records Stream[LabeledRecord],
	results Stream[TrainingResult],
	model Model,
	evaluator *Evaluator,
	notifier alert.Notifier,
	cfg PipelineConfig,
	logger *zap.Logger,
) *Pipeline {
	if notifier == nil {
		notifier = alert.NewNoOpNotifier()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if evaluator == nil {
		evaluator = NewEvaluator(nil)
	}
	interval := cfg.UpdateInterval
	if interval <= 0 {
		interval = time.Minute
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.TrendAlpha <= 0 {
		cfg.TrendAlpha = defaultTrendAlpha
	}
	return &Pipeline{
		records:      records,
		results:      results,
		model:        model,
		evaluator:    evaluator,
		notifier:     notifier,
		logger:       logger,
		cfg:          cfg,
		updateTicker: time.NewTicker(interval),
		window:       ringbuffer.New[LabeledRecord](cfg.WindowSize),
		trend:        indicator.NewEWMA(cfg.TrendAlpha),
	}
}

// Seed は初期データを窓に追加します。
func (p *Pipeline) Seed(records []LabeledRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range records {
		p.appendLocked(r)
	}
}

// appendLocked は窓にレコードを追加します。満杯なら最も古いものを上書きします。
func (p *Pipeline) appendLocked(r LabeledRecord) {
	p.window.Add(r)
	p.pending++
}

// Pending は前回の学習以降に追加されたレコード数を返します。
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// WindowLen は窓に入っているレコード数を返します。
func (p *Pipeline) WindowLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window.Len()
}

// RunOnce は現在の窓を学習用と評価用に分けて再学習し、結果を発行します。
func (p *Pipeline) RunOnce(ctx context.Context) (TrainingResult, error) {
	p.mu.Lock()
	snapshot := p.window.Items()
	consumed := p.pending
	p.pending = 0
	p.mu.Unlock()

	if len(snapshot) == 0 {
		return TrainingResult{}, ErrEmptyTrainingSet
	}

	split := int(float64(len(snapshot)) * p.cfg.SplitRatio)
	if split < 1 {
		split = 1
	}
	if split > len(snapshot) {
		split = len(snapshot)
	}
	train, test := snapshot[:split], snapshot[split:]

	start := time.Now()
	if err := p.model.Train(ctx, train); err != nil {
		// 次の tick で再試行できるよう未学習件数を戻す
		p.mu.Lock()
		p.pending += consumed
		p.mu.Unlock()
		return TrainingResult{}, fmt.Errorf("failed to train model: %w", err)
	}

	result := TrainingResult{
		Version:    p.model.Version(),
		TrainedAt:  time.Now(),
		TrainSize:  len(train),
		TestSize:   len(test),
		Report:     p.evaluator.Evaluate(p.model, test),
		Importance: p.model.FeatureImportance(),
	}
	result.Duration = time.Since(start)
	p.mu.Lock()
	if result.TestSize > 0 {
		p.trend.Update(result.Report.Accuracy)
	}
	result.AccuracyTrend, result.AccuracyStdDev = p.trend.Mean(), p.trend.StdDev()
	p.mu.Unlock()

	p.logger.Info("Model retrained",
		zap.String("version", result.Version),
		zap.Int("train_size", result.TrainSize),
		zap.Int("test_size", result.TestSize),
		zap.Float64("accuracy", result.Report.Accuracy),
		zap.Float64("f1", result.Report.F1),
		zap.Float64("accuracy_trend", result.AccuracyTrend),
		zap.Duration("duration", result.Duration))

	if result.TestSize > 0 && result.Report.Accuracy < p.cfg.MinAccuracy {
		msg := fmt.Sprintf("model %s accuracy %.3f is below %.3f (test size %d)",
			result.Version, result.Report.Accuracy, p.cfg.MinAccuracy, result.TestSize)
		if err := p.notifier.Send(msg); err != nil {
			p.logger.Error("Failed to send alert", zap.Error(err))
		}
	}

	if p.results != nil {
		if err := p.results.Publish(ctx, result); err != nil {
			return result, fmt.Errorf("failed to publish training result: %w", err)
		}
	}
	return result, nil
}

// Startは学習パイプラインを開始します。
// このメソッドはgoroutineとして実行されることを想定しています。
func (p *Pipeline) Start(ctx context.Context) {
	p.logger.Info("Starting learning pipeline...")
	sub, err := p.records.Subscribe(ctx)
	if err != nil {
		p.logger.Error("Failed to subscribe to record stream", zap.Error(err))
		return
	}

	for {
		select {
		case record, ok := <-sub:
			if !ok {
				p.logger.Info("Record stream closed.")
				return
			}
			p.mu.Lock()
			p.appendLocked(record)
			p.mu.Unlock()
		case <-p.updateTicker.C:
			p.mu.Lock()
			pending := p.pending
			p.mu.Unlock()
			if pending == 0 {
				p.logger.Debug("Ticker triggered, but no new records to train on.")
				continue
			}
			if _, err := p.RunOnce(ctx); err != nil {
				p.logger.Error("Failed to retrain model", zap.Error(err))
			}
		case <-ctx.Done():
			p.logger.Info("Stopping learning pipeline...")
			return
		}
	}
}

// Stopは学習パイプラインを停止します。
func (p *Pipeline) Stop() {
	p.updateTicker.Stop()
}
