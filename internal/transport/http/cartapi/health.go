package cartapi

import (
	"net/http"

	"github.com/shoplabs/shopcore/internal/service/models/health"
	"github.com/shoplabs/shopcore/internal/transport/http/respond"
)

// Health endpoints answer 200 only while healthy; degraded and unhealthy
// both answer 503. The full report in the body still distinguishes the two.
func (h *HTTPTransport) liveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, h.health.CheckLiveness(r.Context()))
}

func (h *HTTPTransport) readiness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, h.health.CheckReadiness(r.Context()))
}

func writeHealth(w http.ResponseWriter, resp *health.Response) {
	status := http.StatusOK
	if resp.Status != health.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(w, status, resp)
}
