package learning

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OneVsAllClassifier はクラスごとに BinaryModel を持つ多クラス分類器です。
// Predict は並行に呼び出しても安全で、再学習中も直前のモデルで応答します。
type OneVsAllClassifier struct {
	mu        sync.RWMutex
	models    [NumClasses]BinaryModel
	bounds    FeatureBounds
	version   string
	trainedAt time.Time

	// trainMu は rng と学習処理を直列化します。
	trainMu  sync.Mutex
	rng      *rand.Rand
	parallel bool
	logger   *zap.Logger
}

// Option は OneVsAllClassifier の設定を変更します。
type Option func(*OneVsAllClassifier)

// WithRand は初期重みに使う乱数源を指定します。テストでは固定シードを渡します。
func WithRand(rng *rand.Rand) Option {
	return func(c *OneVsAllClassifier) { c.rng = rng }
}

// WithParallelTraining はクラスごとの学習を並列に行うかを指定します。
func WithParallelTraining(parallel bool) Option {
	return func(c *OneVsAllClassifier) { c.parallel = parallel }
}

// WithLogger はロガーを指定します。
func WithLogger(logger *zap.Logger) Option {
	return func(c *OneVsAllClassifier) { c.logger = logger }
}

// NewOneVsAllClassifier は未学習の分類器を生成します。
func NewOneVsAllClassifier(opts ...Option) *OneVsAllClassifier {
	c := &OneVsAllClassifier{
		version: "untrained",
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Train はレコード全体でクラスごとの二値分類器を学習し、既存のモデルを置き換えます。
// 学習データとテストデータの分割は呼び出し側の責任です。
// ctx がキャンセルされた場合は ctx.Err() を返し、以前のモデルはそのまま残ります。
func (c *OneVsAllClassifier) Train(ctx context.Context, records []LabeledRecord) error {
	c.trainMu.Lock()
	defer c.trainMu.Unlock()

	matrix, labels, bounds, err := Extract(records)
	if err != nil {
		return fmt.Errorf("failed to extract features: %w", err)
	}
	normalized := Normalize(matrix, bounds)

	// 並列でも逐次でも同じ結果になるよう、初期重みは先にまとめて引く。
	inits := make([][]float64, NumClasses)
	for class := range inits {
		inits[class] = initialWeights(c.rng, FeatureCount)
	}

	start := time.Now()
	var models [NumClasses]BinaryModel
	trainClass := func(ctx context.Context, class int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		models[class] = trainBinary(normalized, binaryLabels(labels, class), inits[class])
		c.logger.Debug("Trained binary unit",
			zap.Int("class", class),
			zap.Float64("loss", models[class].Loss))
		return nil
	}

	if c.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for class := 0; class < NumClasses; class++ {
			class := class
			g.Go(func() error { return trainClass(gctx, class) })
		}
		err = g.Wait()
	} else {
		for class := 0; class < NumClasses && err == nil; class++ {
			err = trainClass(ctx, class)
		}
	}
	if err != nil {
		c.logger.Warn("Training abandoned", zap.Error(err))
		return err
	}

	version := fmt.Sprintf("model-%s", uuid.New().String())
	c.mu.Lock()
	c.models = models
	c.bounds = bounds
	c.version = version
	c.trainedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info("Training complete",
		zap.String("version", version),
		zap.Int("records", len(records)),
		zap.Bool("parallel", c.parallel),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// binaryLabels は対象クラスなら 1、それ以外は 0 のラベル列を作ります。
func binaryLabels(labels []int, class int) []float64 {
	y := make([]float64, len(labels))
	for i, l := range labels {
		if l == class {
			y[i] = 1
		}
	}
	return y
}

// Predict は学習時の範囲で正規化した入力に対してクラスを予測します。
// 各クラスの確率は独立したシグモイド出力で、合計が 1 になるとは限りません。
func (c *OneVsAllClassifier) Predict(input Reading) PredictionResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	x := c.bounds.NormalizeVector(input.Vector())
	probs := make([]float64, NumClasses)
	for class, m := range c.models {
		probs[class] = m.Probability(x)
	}
	best := argmax(probs)
	return PredictionResult{
		Class:         best,
		Probabilities: probs,
		Confidence:    probs[best],
	}
}

// FeatureImportance は全クラスの重みの絶対値の平均を、最大値が 1 になるよう正規化して
// 降順に返します。すべてのクラスが学習済みでなければ nil を返します。
func (c *OneVsAllClassifier) FeatureImportance() []FeatureImportance {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var avg [FeatureCount]float64
	for _, m := range c.models {
		if !m.Trained {
			return nil
		}
		for j, w := range m.Weights {
			avg[j] += math.Abs(w) / NumClasses
		}
	}

	top := 0.0
	for _, v := range avg {
		top = math.Max(top, v)
	}

	out := make([]FeatureImportance, FeatureCount)
	for j, v := range avg {
		out[j] = FeatureImportance{Name: FeatureNames[j], Score: v / top}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Version はモデルのバージョンを返します。
func (c *OneVsAllClassifier) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// TrainedAt は最後に学習が完了した時刻を返します。未学習ならゼロ値です。
func (c *OneVsAllClassifier) TrainedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trainedAt
}

// Bounds は学習時に確定した正規化範囲を返します。
func (c *OneVsAllClassifier) Bounds() FeatureBounds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bounds
}

// Models は各クラスのモデルのコピーを返します。
func (c *OneVsAllClassifier) Models() [NumClasses]BinaryModel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out [NumClasses]BinaryModel
	for i, m := range c.models {
		out[i] = m
		out[i].Weights = append([]float64(nil), m.Weights...)
	}
	return out
}
