package learning

import (
	"math"
	"math/rand"
)

// 二値ロジスティック回帰の固定ハイパーパラメータ。
const (
	LearningRate = 0.01
	L2Penalty    = 0.01
	Epochs       = 1000

	// 初期重みは (-InitWeightScale, InitWeightScale) の一様分布から取ります。
	InitWeightScale = 0.005

	sigmoidClamp = 500.0
	probEpsilon  = 1e-15
)

// BinaryModel は「このクラスか否か」を判定する1クラス分の線形分類器です。
type BinaryModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Trained bool      `json:"trained"`
	// Loss は最終エポックの交差エントロピーです。記録用で学習の制御には使いません。
	Loss float64 `json:"loss"`
}

// Probability は正規化済みの特徴量に対するこのクラスの確率を返します。
// 未学習のモデルは常に 0 を返します。
func (m BinaryModel) Probability(x []float64) float64 {
	if !m.Trained {
		return 0
	}
	return sigmoid(dot(m.Weights, x) + m.Bias)
}

func sigmoid(z float64) float64 {
	z = math.Max(-sigmoidClamp, math.Min(sigmoidClamp, z))
	return 1 / (1 + math.Exp(-z))
}

func dot(w, x []float64) float64 {
	var sum float64
	for j := range w {
		sum += w[j] * x[j]
	}
	return sum
}

// initialWeights は小さな乱数で初期重みを作ります。
func initialWeights(rng *rand.Rand, n int) []float64 {
	w := make([]float64, n)
	for j := range w {
		w[j] = (rng.Float64()*2 - 1) * InitWeightScale
	}
	return w
}

// crossEntropy は予測確率をクランプした上での平均交差エントロピーです。
func crossEntropy(p, y []float64) float64 {
	var loss float64
	for i := range p {
		q := math.Min(math.Max(p[i], probEpsilon), 1-probEpsilon)
		loss -= y[i]*math.Log(q) + (1-y[i])*math.Log(1-q)
	}
	return loss / float64(len(p))
}

// trainBinary はフルバッチ勾配降下法で二値分類器を学習します。
// x は正規化済みの行列、y は 0/1 のラベル、init は初期重み（そのまま更新されます）。
// 早期終了はせず、必ず Epochs 回まわします。
func trainBinary(x [][]float64, y []float64, init []float64) BinaryModel {
	w := init
	var b float64

	n := float64(len(x))
	p := make([]float64, len(x))
	grad := make([]float64, len(w))
	var loss float64

	for epoch := 0; epoch < Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradB float64

		for i, row := range x {
			p[i] = sigmoid(dot(w, row) + b)
			d := p[i] - y[i]
			for j, v := range row {
				grad[j] += d * v
			}
			gradB += d
		}

		// L2正則化は重みのみ。バイアスには掛けない。
		for j := range w {
			w[j] -= LearningRate * (grad[j]/n + L2Penalty*w[j])
		}
		b -= LearningRate * gradB / n

		loss = crossEntropy(p, y)
	}

	return BinaryModel{Weights: w, Bias: b, Trained: true, Loss: loss}
}
