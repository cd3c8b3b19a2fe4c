package learning

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// rocPoints は ROC 曲線の点数（FPR 0, 0.1, ..., 1.0）です。
const rocPoints = 11

// ClassMetrics は1クラス分の評価指標です。
type ClassMetrics struct {
	Class     int     `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ROCPoint は ROC 曲線上の1点です。
type ROCPoint struct {
	FPR float64 `json:"fpr"`
	TPR float64 `json:"tpr"`
}

// EvaluationReport はテストデータに対する評価結果です。
// Precision/Recall/F1 は全クラスの単純平均（マクロ平均）です。
type EvaluationReport struct {
	Accuracy        float64                     `json:"accuracy"`
	Precision       float64                     `json:"precision"`
	Recall          float64                     `json:"recall"`
	F1              float64                     `json:"f1"`
	PerClass        []ClassMetrics              `json:"per_class"`
	ConfusionMatrix [NumClasses][NumClasses]int `json:"confusion_matrix"`
	ROCCurve        []ROCPoint                  `json:"roc_curve"`
	Samples         int                         `json:"samples"`
}

// Evaluator は学習済みモデルをテストデータで評価します。
type Evaluator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEvaluator は Evaluator を生成します。rng が nil の場合は時刻で初期化します。
func NewEvaluator(rng *rand.Rand) *Evaluator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Evaluator{rng: rng}
}

// Evaluate は各レコードを予測し、実際のラベルと比較して指標を計算します。
// ラベルが範囲外のレコードは集計に含めません。
func (e *Evaluator) Evaluate(p Predictor, records []LabeledRecord) EvaluationReport {
	var report EvaluationReport
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		pred := p.Predict(r.Reading)
		if pred.Class < 0 || pred.Class >= NumClasses {
			continue
		}
		report.ConfusionMatrix[r.Label][pred.Class]++
		report.Samples++
	}

	var correct int
	report.PerClass = make([]ClassMetrics, NumClasses)
	for c := 0; c < NumClasses; c++ {
		m := classMetrics(report.ConfusionMatrix, c)
		report.PerClass[c] = m
		report.Precision += m.Precision / NumClasses
		report.Recall += m.Recall / NumClasses
		report.F1 += m.F1 / NumClasses
		correct += report.ConfusionMatrix[c][c]
	}
	report.Accuracy = safeDiv(float64(correct), float64(report.Samples))
	report.ROCCurve = e.rocCurve()
	return report
}

func classMetrics(matrix [NumClasses][NumClasses]int, c int) ClassMetrics {
	tp := matrix[c][c]
	var fp, fn, support int
	for i := 0; i < NumClasses; i++ {
		support += matrix[c][i]
		if i == c {
			continue
		}
		fp += matrix[i][c]
		fn += matrix[c][i]
	}

	precision := safeDiv(float64(tp), float64(tp+fp))
	recall := safeDiv(float64(tp), float64(tp+fn))
	return ClassMetrics{
		Class:     c,
		Precision: precision,
		Recall:    recall,
		F1:        safeDiv(2*precision*recall, precision+recall),
		Support:   support,
	}
}

// safeDiv は分母が 0 のとき 0 を返します。
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// rocCurve はモデルの性能とは無関係な固定形状の曲線を返すプレースホルダーです。
// TODO: クラスごとに確率の閾値を掃引して実際の TPR/FPR を計算する。
func (e *Evaluator) rocCurve() []ROCPoint {
	e.mu.Lock()
	defer e.mu.Unlock()

	curve := make([]ROCPoint, rocPoints)
	for i := range curve {
		fpr := float64(i) / float64(rocPoints-1)
		jitter := e.rng.Float64() * 0.1
		curve[i] = ROCPoint{FPR: fpr, TPR: math.Min(1, fpr+0.1+jitter)}
	}
	return curve
}
