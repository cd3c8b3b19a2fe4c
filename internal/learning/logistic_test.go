package learning

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, sigmoid(0))
	assert.InDelta(t, 0.7310585786, sigmoid(1), 1e-9)

	for _, z := range []float64{-1e6, -501, 501, 1e6} {
		p := sigmoid(z)
		assert.False(t, math.IsNaN(p), "z=%v", z)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
	assert.Equal(t, sigmoid(500), sigmoid(1e6))
	assert.Equal(t, sigmoid(-500), sigmoid(-1e6))
}

func TestCrossEntropy_Clamped(t *testing.T) {
	loss := crossEntropy([]float64{0, 1}, []float64{1, 0})
	assert.False(t, math.IsInf(loss, 0))
	assert.InDelta(t, -math.Log(1e-15), loss, 1e-2)
}

func TestInitialWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		for _, w := range initialWeights(rng, FeatureCount) {
			assert.Greater(t, w, -InitWeightScale)
			assert.Less(t, w, InitWeightScale)
		}
	}

	a := initialWeights(rand.New(rand.NewSource(7)), FeatureCount)
	b := initialWeights(rand.New(rand.NewSource(7)), FeatureCount)
	assert.Equal(t, a, b)
}

func TestBinaryModel_UntrainedProbabilityIsZero(t *testing.T) {
	var m BinaryModel
	assert.Zero(t, m.Probability([]float64{1, 1, 1, 1, 1, 1}))
}

func TestTrainBinary_WeightDecayWithoutSignal(t *testing.T) {
	// 特徴量がすべて 0 なら勾配は 0 で、重みは L2 によって毎エポック (1-αλ) 倍に縮む。
	x := make([][]float64, 4)
	for i := range x {
		x[i] = []float64{0, 0}
	}
	y := []float64{1, 0, 1, 0}

	m := trainBinary(x, y, []float64{0.004, -0.002})

	decay := math.Pow(1-LearningRate*L2Penalty, Epochs)
	assert.True(t, m.Trained)
	assert.InDelta(t, 0.004*decay, m.Weights[0], 1e-12)
	assert.InDelta(t, -0.002*decay, m.Weights[1], 1e-12)
	// ラベルが半々なので p=0.5 のままバイアスは動かない
	assert.Zero(t, m.Bias)
	assert.InDelta(t, math.Ln2, m.Loss, 1e-12)
}

func TestTrainBinary_LearnsDirection(t *testing.T) {
	x := [][]float64{{0}, {0.25}, {0.75}, {1}}
	y := []float64{0, 0, 1, 1}

	m := trainBinary(x, y, []float64{0})

	require.True(t, m.Trained)
	assert.Greater(t, m.Weights[0], 0.0)
	assert.Greater(t, m.Probability([]float64{1}), m.Probability([]float64{0}))
	assert.Less(t, m.Loss, math.Ln2)
}

// referenceTrain は勾配降下の更新式をそのまま書き下したものです。
// 勾配はサンプル平均、L2 は重みのみに掛かります。
func referenceTrain(x [][]float64, y []float64, init []float64) ([]float64, float64) {
	w := append([]float64(nil), init...)
	var b float64
	n := float64(len(x))
	for epoch := 0; epoch < Epochs; epoch++ {
		g := make([]float64, len(w))
		var gb float64
		for i, row := range x {
			z := b
			for j, v := range row {
				z += w[j] * v
			}
			d := 1/(1+math.Exp(-z)) - y[i]
			for j, v := range row {
				g[j] += d * v / n
			}
			gb += d / n
		}
		for j := range w {
			w[j] -= LearningRate * (g[j] + L2Penalty*w[j])
		}
		b -= LearningRate * gb
	}
	return w, b
}

func TestTrainBinary_UpdateRule(t *testing.T) {
	// ラベルが偏っているのでバイアスは 0 から動く
	x := [][]float64{{0, 1}, {0.2, 0.5}, {0.9, 0.1}, {1, 0}, {0.5, 0.5}}
	y := []float64{0, 0, 1, 1, 1}
	init := []float64{0.003, -0.001}

	wantW, wantB := referenceTrain(x, y, init)
	m := trainBinary(x, y, append([]float64(nil), init...))

	require.True(t, m.Trained)
	require.Len(t, m.Weights, 2)
	assert.InDelta(t, wantW[0], m.Weights[0], 1e-12)
	assert.InDelta(t, wantW[1], m.Weights[1], 1e-12)
	assert.InDelta(t, wantB, m.Bias, 1e-12)

	// 既知の値: w=[1.30079005624970, -0.84505515426126], b=0.171784248481133
	assert.InDelta(t, 1.30079005624970, m.Weights[0], 1e-9)
	assert.InDelta(t, -0.84505515426126, m.Weights[1], 1e-9)
	assert.InDelta(t, 0.171784248481133, m.Bias, 1e-9)
}
