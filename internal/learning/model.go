package learning

import "context"

// PredictionResult は1件の予測結果です。
type PredictionResult struct {
	Class         int       `json:"class"`
	Probabilities []float64 `json:"probabilities"`
	Confidence    float64   `json:"confidence"`
}

// FeatureImportance は特徴量ごとの正規化済み重要度です。
type FeatureImportance struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Predictorは生の計測値からクラスを予測するインターフェースです。
type Predictor interface {
	Predict(input Reading) PredictionResult
}

// Modelは学習済みモデルのインターフェースです。
type Model interface {
	Predictor
	// Trainは与えられたレコードでモデルを訓練します。
	Train(ctx context.Context, records []LabeledRecord) error
	// FeatureImportanceは重要度の高い順に特徴量を返します。
	FeatureImportance() []FeatureImportance
	// Versionはモデルのバージョンを返します。
	Version() string
}

// argmax は最大値を取る最初のインデックスを返します（同値なら小さい方）。
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
