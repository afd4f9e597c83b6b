package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// DefaultCheckTimeout bounds the whole readiness check.
const DefaultCheckTimeout = 5 * time.Second

// Check is one readiness dependency.
type Check struct {
	// Name identifies the dependency in the response, e.g. "database".
	Name string

	// Ping returns nil when the dependency is usable.
	Ping func(ctx context.Context) error
}

// ListenerCheck reports whether the store listener accepts connections.
func ListenerCheck(running func() bool) Check {
	return Check{
		Name: "listener",
		Ping: func(context.Context) error {
			if !running() {
				return errors.New("store listener is not accepting connections")
			}
			return nil
		},
	}
}

// HealthHandler serves the unauthenticated health endpoints.
type HealthHandler struct {
	service string
	checks  []Check
	timeout time.Duration
}

// NewHealthHandler creates a health handler. With no checks the server
// is never ready.
func NewHealthHandler(service string, checks ...Check) *HealthHandler {
	return &HealthHandler{service: service, checks: checks, timeout: DefaultCheckTimeout}
}

// Liveness handles GET /health. It succeeds whenever the HTTP server is
// responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": h.service,
	}))
}

// CheckResult is the outcome of one Check.
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Readiness handles GET /health/ready. It runs every check and answers
// 503 if any of them fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.checks) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("no readiness checks configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := make([]CheckResult, 0, len(h.checks))
	allHealthy := true

	for _, c := range h.checks {
		start := time.Now()
		err := c.Ping(ctx)
		res := CheckResult{
			Name:    c.Name,
			Status:  "healthy",
			Latency: time.Since(start).String(),
		}
		if err != nil {
			res.Status = "unhealthy"
			res.Error = err.Error()
			allHealthy = false
		}
		results = append(results, res)
	}

	if allHealthy {
		writeJSON(w, http.StatusOK, healthyResponse(results))
	} else {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(results))
	}
}
