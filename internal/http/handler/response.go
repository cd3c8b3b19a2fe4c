package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/airq-dashboard/internal/indicator"
	"github.com/your-org/airq-dashboard/internal/learning"
)

// 小数点以下の桁数。ダッシュボードの表示用に丸めます。
const jsonPlaces = 4

// round4 は表示用に値を丸めます。NaN と Inf は 0 にします。
func round4(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(jsonPlaces).InexactFloat64()
}

func round4All(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = round4(v)
	}
	return out
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type classMetricsResponse struct {
	Class     int     `json:"class"`
	Category  string  `json:"category"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

type rocPointResponse struct {
	FPR float64 `json:"fpr"`
	TPR float64 `json:"tpr"`
}

type reportResponse struct {
	Version         string                                        `json:"version"`
	TrainedAt       time.Time                                     `json:"trained_at"`
	DurationMS      int64                                         `json:"duration_ms"`
	TrainSize       int                                           `json:"train_size"`
	TestSize        int                                           `json:"test_size"`
	Accuracy        float64                                       `json:"accuracy"`
	Precision       float64                                       `json:"precision"`
	Recall          float64                                       `json:"recall"`
	F1              float64                                       `json:"f1"`
	AccuracyTrend   float64                                       `json:"accuracy_trend"`
	AccuracyStdDev  float64                                       `json:"accuracy_stddev"`
	PerClass        []classMetricsResponse                        `json:"per_class"`
	ConfusionMatrix [learning.NumClasses][learning.NumClasses]int `json:"confusion_matrix"`
	// ROCCurve は固定形状のプレースホルダーで、モデルの性能を反映しません。
	ROCCurve []rocPointResponse `json:"roc_curve"`
}

type importanceResponse struct {
	Version  string                       `json:"version"`
	Features []learning.FeatureImportance `json:"features"`
}

type predictResponse struct {
	Version       string    `json:"version"`
	Class         int       `json:"class"`
	Category      string    `json:"category"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities"`
	AQI           float64   `json:"aqi"`
}

type snapshotMessage struct {
	Type       string             `json:"type"`
	Report     reportResponse     `json:"report"`
	Importance importanceResponse `json:"importance"`
}

func newReportResponse(res learning.TrainingResult) reportResponse {
	rep := res.Report
	out := reportResponse{
		Version:         res.Version,
		TrainedAt:       res.TrainedAt,
		DurationMS:      res.Duration.Milliseconds(),
		TrainSize:       res.TrainSize,
		TestSize:        res.TestSize,
		Accuracy:        round4(rep.Accuracy),
		Precision:       round4(rep.Precision),
		Recall:          round4(rep.Recall),
		F1:              round4(rep.F1),
		AccuracyTrend:   round4(res.AccuracyTrend),
		AccuracyStdDev:  round4(res.AccuracyStdDev),
		ConfusionMatrix: rep.ConfusionMatrix,
	}
	for _, m := range rep.PerClass {
		out.PerClass = append(out.PerClass, classMetricsResponse{
			Class:     m.Class,
			Category:  indicator.CategoryName(m.Class),
			Precision: round4(m.Precision),
			Recall:    round4(m.Recall),
			F1:        round4(m.F1),
			Support:   m.Support,
		})
	}
	for _, p := range rep.ROCCurve {
		out.ROCCurve = append(out.ROCCurve, rocPointResponse{FPR: round4(p.FPR), TPR: round4(p.TPR)})
	}
	return out
}

func newImportanceResponse(res learning.TrainingResult) importanceResponse {
	out := importanceResponse{Version: res.Version, Features: []learning.FeatureImportance{}}
	for _, fi := range res.Importance {
		out.Features = append(out.Features, learning.FeatureImportance{Name: fi.Name, Score: round4(fi.Score)})
	}
	return out
}

func newSnapshot(res learning.TrainingResult) snapshotMessage {
	return snapshotMessage{
		Type:       "snapshot",
		Report:     newReportResponse(res),
		Importance: newImportanceResponse(res),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response to JSON", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
