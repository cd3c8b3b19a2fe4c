package learning

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// predictorFunc は関数を Predictor として使うためのアダプタです。
type predictorFunc func(Reading) PredictionResult

func (f predictorFunc) Predict(r Reading) PredictionResult { return f(r) }

func constantPredictor(class int) Predictor {
	return predictorFunc(func(Reading) PredictionResult {
		return PredictionResult{Class: class, Probabilities: make([]float64, NumClasses)}
	})
}

// oraclePredictor は PM2.5 をラベルとして埋め込んだレコードに対して常に正解を返します。
func oraclePredictor() Predictor {
	return predictorFunc(func(r Reading) PredictionResult {
		return PredictionResult{Class: int(r.PM25)}
	})
}

func eachClassTwice() []LabeledRecord {
	var records []LabeledRecord
	for c := 0; c < NumClasses; c++ {
		records = append(records, record(float64(c), c), record(float64(c), c))
	}
	return records
}

func TestEvaluate_Perfect(t *testing.T) {
	report := NewEvaluator(rand.New(rand.NewSource(1))).Evaluate(oraclePredictor(), eachClassTwice())

	assert.Equal(t, 12, report.Samples)
	assert.Equal(t, 1.0, report.Accuracy)
	assert.InDelta(t, 1.0, report.Precision, 1e-12)
	assert.InDelta(t, 1.0, report.Recall, 1e-12)
	assert.InDelta(t, 1.0, report.F1, 1e-12)
	for c := 0; c < NumClasses; c++ {
		assert.Equal(t, 2, report.ConfusionMatrix[c][c])
		assert.Equal(t, 2, report.PerClass[c].Support)
	}
}

func TestEvaluate_DegenerateMetricsAreZero(t *testing.T) {
	report := NewEvaluator(rand.New(rand.NewSource(1))).Evaluate(constantPredictor(0), eachClassTwice())

	assert.InDelta(t, 2.0/12.0, report.Accuracy, 1e-12)

	c0 := report.PerClass[0]
	assert.InDelta(t, 2.0/12.0, c0.Precision, 1e-12)
	assert.Equal(t, 1.0, c0.Recall)
	assert.InDelta(t, 2.0/7.0, c0.F1, 1e-12)

	// クラス 1..5 は一度も予測されないので tp=fp=0、precision/F1 は NaN ではなく 0
	for c := 1; c < NumClasses; c++ {
		m := report.PerClass[c]
		assert.Zero(t, m.Precision, "class %d", c)
		assert.Zero(t, m.Recall, "class %d", c)
		assert.Zero(t, m.F1, "class %d", c)
	}
	assert.InDelta(t, (2.0/12.0)/6, report.Precision, 1e-12)
	assert.InDelta(t, 1.0/6, report.Recall, 1e-12)
	assert.InDelta(t, (2.0/7.0)/6, report.F1, 1e-12)
}

func TestEvaluate_RecallZeroWhenClassAbsent(t *testing.T) {
	// クラス 3 は実データに存在せず予測もされない: tp=fn=0
	records := []LabeledRecord{record(0, 0), record(1, 1)}
	report := NewEvaluator(nil).Evaluate(oraclePredictor(), records)

	m := report.PerClass[3]
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.F1)
	assert.False(t, math.IsNaN(report.F1))
}

func TestEvaluate_ConfusionConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	records := sixBandRecords(rng, 120)
	c := newTestClassifier(21, true)
	require.NoError(t, c.Train(context.Background(), records[:100]))

	report := NewEvaluator(rng).Evaluate(c, records[100:])

	var total, diag int
	for i := 0; i < NumClasses; i++ {
		for j := 0; j < NumClasses; j++ {
			total += report.ConfusionMatrix[i][j]
		}
		diag += report.ConfusionMatrix[i][i]
	}
	assert.Equal(t, 20, total)
	assert.Equal(t, report.Samples, total)
	assert.InDelta(t, float64(diag)/float64(total), report.Accuracy, 1e-12)
}

func TestEvaluate_SkipsInvalidLabels(t *testing.T) {
	records := append(eachClassTwice(), record(1, -1), record(1, NumClasses))
	report := NewEvaluator(nil).Evaluate(oraclePredictor(), records)

	assert.Equal(t, 12, report.Samples)
	assert.Equal(t, 1.0, report.Accuracy)
}

func TestEvaluate_Empty(t *testing.T) {
	report := NewEvaluator(nil).Evaluate(constantPredictor(0), nil)

	assert.Zero(t, report.Samples)
	assert.Zero(t, report.Accuracy)
	assert.Zero(t, report.F1)
	assert.Len(t, report.PerClass, NumClasses)
	assert.Len(t, report.ROCCurve, rocPoints)
}

func TestEvaluate_PlaceholderROCCurve(t *testing.T) {
	report := NewEvaluator(rand.New(rand.NewSource(4))).Evaluate(constantPredictor(0), eachClassTwice())

	require.Len(t, report.ROCCurve, 11)
	for i, p := range report.ROCCurve {
		assert.InDelta(t, float64(i)/10, p.FPR, 1e-12)
		assert.LessOrEqual(t, p.TPR, 1.0)
		assert.Less(t, p.TPR, p.FPR+0.2+1e-12)
		assert.True(t, p.TPR == 1 || p.TPR >= p.FPR+0.1-1e-12, "point %d: %+v", i, p)
	}
	assert.Equal(t, 1.0, report.ROCCurve[10].TPR)

	again := NewEvaluator(rand.New(rand.NewSource(4))).Evaluate(constantPredictor(0), eachClassTwice())
	assert.Equal(t, report.ROCCurve, again.ROCCurve)
}
