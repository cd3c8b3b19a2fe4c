package learning

import (
	"errors"
	"fmt"
	"math"
)

// FeatureCount は1レコードあたりの特徴量の数です。
const FeatureCount = 6

// NumClasses はAQIカテゴリ（クラスラベル 0..5）の数です。
const NumClasses = 6

// FeatureNames は特徴量ベクトルの列順に対応する表示名です。
var FeatureNames = [FeatureCount]string{
	"PM2.5",
	"Temperature",
	"Humidity",
	"Wind Speed",
	"Visibility",
	"Pressure",
}

// Reading は1地点・1時刻の環境計測値です。
type Reading struct {
	PM25        float64 `json:"pm25"`        // µg/m³
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	WindSpeed   float64 `json:"wind_speed"`  // m/s
	Visibility  float64 `json:"visibility"`  // km
	Pressure    float64 `json:"pressure"`    // hPa
}

// Vector は FeatureNames と同じ順序で特徴量を返します。
func (r Reading) Vector() []float64 {
	return []float64{r.PM25, r.Temperature, r.Humidity, r.WindSpeed, r.Visibility, r.Pressure}
}

// LabeledRecord は学習・評価に使うラベル付きの計測値です。
type LabeledRecord struct {
	Reading
	Label int `json:"label"`
}

// Valid はラベルが 0..NumClasses-1 の範囲にあるかを返します。
func (r LabeledRecord) Valid() bool {
	return r.Label >= 0 && r.Label < NumClasses
}

// RecordGeneratorはラベル付きレコードを生成するインターフェースです。
type RecordGenerator interface {
	Generate() (LabeledRecord, error)
}

var (
	// ErrEmptyTrainingSet はレコードが1件もない状態で学習しようとした場合に返されます。
	ErrEmptyTrainingSet = errors.New("empty training set")
	// ErrInvalidLabel はラベルがクラス範囲外の場合に返されます。
	ErrInvalidLabel = errors.New("invalid class label")
)

// FeatureBounds は学習時に確定する列ごとの最小値・最大値です。
type FeatureBounds struct {
	Min [FeatureCount]float64 `json:"min"`
	Max [FeatureCount]float64 `json:"max"`
}

// Degenerate は列 i の値がすべて同じ（max == min）かどうかを返します。
func (b FeatureBounds) Degenerate(i int) bool {
	return b.Max[i] == b.Min[i]
}

// Extract はレコード列を特徴量行列・ラベル・列ごとの範囲に変換します。
func Extract(records []LabeledRecord) ([][]float64, []int, FeatureBounds, error) {
	var bounds FeatureBounds
	if len(records) == 0 {
		return nil, nil, bounds, ErrEmptyTrainingSet
	}

	matrix := make([][]float64, len(records))
	labels := make([]int, len(records))
	for j := 0; j < FeatureCount; j++ {
		bounds.Min[j] = math.Inf(1)
		bounds.Max[j] = math.Inf(-1)
	}

	for i, r := range records {
		if !r.Valid() {
			return nil, nil, FeatureBounds{}, fmt.Errorf("record %d has label %d: %w", i, r.Label, ErrInvalidLabel)
		}
		row := r.Vector()
		for j, v := range row {
			bounds.Min[j] = math.Min(bounds.Min[j], v)
			bounds.Max[j] = math.Max(bounds.Max[j], v)
		}
		matrix[i] = row
		labels[i] = r.Label
	}
	return matrix, labels, bounds, nil
}
