package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/your-org/airq-dashboard/internal/dashboard"
	"github.com/your-org/airq-dashboard/internal/learning"
	"go.uber.org/zap"
)

// NewRouter wires every dashboard endpoint onto a chi router.
func NewRouter(state *dashboard.State, predictor learning.Predictor, logger *zap.Logger) (http.Handler, error) {
	dash, err := NewDashboardHandler(state, predictor, logger)
	if err != nil {
		return nil, err
	}
	stream := NewStreamHandler(state, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", NewHealthCheckHandler(state))
	r.Route("/api/v1", func(r chi.Router) {
		dash.RegisterRoutes(r)
		stream.RegisterRoutes(r)
	})
	return r, nil
}
