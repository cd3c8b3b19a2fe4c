package handler

import (
	"net/http"

	"github.com/your-org/airq-dashboard/internal/dashboard"
)

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// NewHealthCheckHandler returns a handler that always answers 200 so liveness
// probes pass before the first model exists. The body names the served model.
func NewHealthCheckHandler(state *dashboard.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if res, ok := state.Latest(); ok {
			resp.Model = res.Version
		} else {
			resp.Status = "warming_up"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
