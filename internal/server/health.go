package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"

	integrationConfigured = "configured"
	integrationMissing    = "not configured"
)

// HealthChecker serves the health endpoints next to /metrics. Only the
// server's own state decides readiness. Google authorization and the
// API-key integrations are reported alongside, since their tools answer with
// a not-configured message rather than failing the server.
type HealthChecker struct {
	ready   atomic.Bool
	sc      *ServerContext
	started time.Time
}

// NewHealthChecker creates a HealthChecker that starts out ready. sc may be
// nil, in which case only the server check is reported.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, started: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady marks the server ready or draining.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the value last passed to SetReady.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the JSON body of every health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime,omitempty"`
	Checks       map[string]string `json:"checks,omitempty"`
	Integrations map[string]bool   `json:"integrations,omitempty"`
}

// blocker returns why the server cannot take requests, or "" when it can.
func (h *HealthChecker) blocker() string {
	if !h.ready.Load() {
		return healthStatusNotReady
	}
	if h.sc != nil && h.sc.IsShutdown() {
		return healthStatusShuttingDown
	}
	return ""
}

func (h *HealthChecker) checks(blocker string) map[string]string {
	checks := map[string]string{"server": healthStatusOK}
	if blocker != "" {
		checks["server"] = blocker
	}
	if h.sc == nil {
		return checks
	}
	checks["google"] = h.sc.GoogleAuthState()
	for name, ok := range h.sc.Integrations() {
		checks[name] = integrationMissing
		if ok {
			checks[name] = integrationConfigured
		}
	}
	return checks
}

func writeHealth(w http.ResponseWriter, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	if resp.Status == healthStatusOK {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// LivenessHandler serves /healthz. It succeeds while the process is up.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz with a per-dependency breakdown.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		blocker := h.blocker()
		status := healthStatusOK
		if blocker != "" {
			status = healthStatusNotReady
		}
		writeHealth(w, HealthResponse{Status: status, Checks: h.checks(blocker)})
	})
}

// DetailedHealthHandler serves /healthz/detailed, adding uptime and the
// integration flags the settings resource exposes.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		blocker := h.blocker()
		resp := HealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.started).Truncate(time.Second).String(),
			Checks: h.checks(blocker),
		}
		if blocker != "" {
			resp.Status = blocker
		}
		if h.sc != nil {
			resp.Integrations = h.sc.Integrations()
		}
		writeHealth(w, resp)
	})
}

// RegisterHealthEndpoints mounts the health handlers on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
