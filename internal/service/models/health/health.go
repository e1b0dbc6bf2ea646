package health

import "time"

// Status is the reduced health level. Levels order as
// unhealthy > degraded > healthy when combining probes.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Worst returns the more severe of the two statuses.
func Worst(a, b Status) Status {
	if a == StatusUnhealthy || b == StatusUnhealthy {
		return StatusUnhealthy
	}
	if a == StatusDegraded || b == StatusDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// Dependency is the reachability probe result for one external service.
type Dependency struct {
	Name         string `json:"name"`
	Status       Status `json:"status"`
	ResponseTime int64  `json:"responseTime"`
	Error        string `json:"error,omitempty"`
}

// Resource is a local pressure probe result (memory, cart capacity).
type Resource struct {
	Name       string  `json:"name"`
	Status     Status  `json:"status"`
	Value      float64 `json:"value"`
	Limit      float64 `json:"limit"`
	Percentage float64 `json:"percentage"`
	Unit       string  `json:"unit"`
}

// Checks groups the two orthogonal readiness signals.
type Checks struct {
	Dependencies []Dependency `json:"dependencies"`
	Resources    []Resource   `json:"resources"`
}

// Response is the payload served by the health endpoints.
type Response struct {
	Status       Status    `json:"status"`
	Service      string    `json:"service"`
	Version      string    `json:"version"`
	Timestamp    time.Time `json:"timestamp"`
	Uptime       float64   `json:"uptime"`
	Checks       Checks    `json:"checks"`
	ResponseTime int64     `json:"responseTime"`
}
