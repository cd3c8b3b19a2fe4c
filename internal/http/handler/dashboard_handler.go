package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xeipuuv/gojsonschema"
	"github.com/your-org/airq-dashboard/internal/dashboard"
	"github.com/your-org/airq-dashboard/internal/indicator"
	"github.com/your-org/airq-dashboard/internal/learning"
	"go.uber.org/zap"
)

const maxPredictBody = 1 << 20

// predictSchema は予測リクエストの JSON Schema です。
const predictSchema = `{
  "type": "object",
  "required": ["pm25", "temperature", "humidity", "wind_speed", "visibility", "pressure"],
  "additionalProperties": false,
  "properties": {
    "pm25":        {"type": "number", "minimum": 0, "maximum": 1000},
    "temperature": {"type": "number", "minimum": -60, "maximum": 60},
    "humidity":    {"type": "number", "minimum": 0, "maximum": 100},
    "wind_speed":  {"type": "number", "minimum": 0, "maximum": 100},
    "visibility":  {"type": "number", "minimum": 0, "maximum": 100},
    "pressure":    {"type": "number", "minimum": 500, "maximum": 1100}
  }
}`

const errNoModel = "no model has been trained yet"

// versioned is implemented by predictors that know which model they serve.
type versioned interface {
	Version() string
}

// DashboardHandler はレポート・特徴量重要度・予測のHTTPリクエストを処理します。
type DashboardHandler struct {
	state     *dashboard.State
	predictor learning.Predictor
	schema    *gojsonschema.Schema
	logger    *zap.Logger
}

// NewDashboardHandler は新しいDashboardHandlerを作成します。
func NewDashboardHandler(state *dashboard.State, predictor learning.Predictor, logger *zap.Logger) (*DashboardHandler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(predictSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile predict schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{state: state, predictor: predictor, schema: schema, logger: logger}, nil
}

// RegisterRoutes はchiルーターにダッシュボードのルートを登録します。
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/report", h.GetReport)
	r.Get("/importance", h.GetImportance)
	r.Post("/predict", h.Predict)
}

// GetReport は最新の評価結果を返します。
func (h *DashboardHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	res, ok := h.state.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, errNoModel)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(res))
}

// GetImportance は最新モデルの特徴量重要度を返します。
func (h *DashboardHandler) GetImportance(w http.ResponseWriter, r *http.Request) {
	res, ok := h.state.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, errNoModel)
		return
	}
	writeJSON(w, http.StatusOK, newImportanceResponse(res))
}

// Predict はリクエストの計測値に対するAQIカテゴリを予測します。
func (h *DashboardHandler) Predict(w http.ResponseWriter, r *http.Request) {
	res, ok := h.state.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, errNoModel)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPredictBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		writeError(w, http.StatusBadRequest, "request body does not match schema", details...)
		return
	}

	var reading learning.Reading
	if err := json.Unmarshal(body, &reading); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	// The classifier swaps models before the pipeline publishes the new result,
	// so the served version comes from the predictor when it has one.
	version := res.Version
	if v, ok := h.predictor.(versioned); ok {
		version = v.Version()
	}
	pred := h.predictor.Predict(reading)
	h.logger.Debug("Prediction served",
		zap.Int("class", pred.Class),
		zap.Float64("confidence", pred.Confidence))

	writeJSON(w, http.StatusOK, predictResponse{
		Version:       version,
		Class:         pred.Class,
		Category:      indicator.CategoryName(pred.Class),
		Confidence:    round4(pred.Confidence),
		Probabilities: round4All(pred.Probabilities),
		AQI:           indicator.PM25ToAQI(reading.PM25),
	})
}
