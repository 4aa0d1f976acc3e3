package http

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// HealthChecker defines the interface for health check dependencies
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many sessions are live
type SessionCounter interface {
	Len() int
}

// HealthHandler handles health check requests. The user source check is
// reused for pingTTL so frequent checks do not each hit the upstream API.
type HealthHandler struct {
	userSource HealthChecker
	sessions   SessionCounter
	startTime  time.Time
	version    string
	pingTTL    time.Duration
	now        func() time.Time

	mu       sync.Mutex
	lastPing time.Time
	last     Check
}

// NewHealthHandler creates a new health handler. A pingTTL of 0 pings on
// every check.
func NewHealthHandler(userSource HealthChecker, sessions SessionCounter, version string, pingTTL time.Duration) *HealthHandler {
	return &HealthHandler{
		userSource: userSource,
		sessions:   sessions,
		startTime:  time.Now(),
		version:    version,
		pingTTL:    pingTTL,
		now:        time.Now,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HandleLiveness reports whether the process is serving at all
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness reports 503 while the user source is unreachable
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	check := h.userSourceCheck(ctx)
	status := check.Status

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSON(w, statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    map[string]Check{"user_source": check},
	})
}

// HandleHealth handles detailed health check requests (for monitoring/debugging)
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	check := h.userSourceCheck(ctx)
	overallStatus := "healthy"
	if check.Status != "healthy" {
		overallStatus = "degraded"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := struct {
		HealthResponse
		Memory struct {
			Alloc uint64 `json:"alloc_bytes"`
			Sys   uint64 `json:"sys_bytes"`
			NumGC uint32 `json:"num_gc"`
		} `json:"memory"`
		Goroutines int `json:"goroutines"`
		Sessions   int `json:"sessions"`
	}{
		HealthResponse: HealthResponse{
			Status:    overallStatus,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   h.version,
			Uptime:    time.Since(h.startTime).Round(time.Second).String(),
			Checks:    map[string]Check{"user_source": check},
		},
		Goroutines: runtime.NumGoroutine(),
	}
	response.Memory.Alloc = memStats.Alloc
	response.Memory.Sys = memStats.Sys
	response.Memory.NumGC = memStats.NumGC
	if h.sessions != nil {
		response.Sessions = h.sessions.Len()
	}

	// Upstream failures are reported by readiness, not here.
	WriteJSON(w, http.StatusOK, response)
}

// userSourceCheck returns the last ping result while it is younger than
// pingTTL, and pings otherwise.
func (h *HealthHandler) userSourceCheck(ctx context.Context) Check {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if h.pingTTL > 0 && !h.lastPing.IsZero() && now.Sub(h.lastPing) < h.pingTTL {
		return h.last
	}

	h.last = h.checkUserSource(ctx)
	h.lastPing = now
	return h.last
}

// checkUserSource pings the external user API
func (h *HealthHandler) checkUserSource(ctx context.Context) Check {
	start := time.Now()

	if h.userSource == nil {
		return Check{
			Status:  "unhealthy",
			Message: "User source not configured",
		}
	}

	err := h.userSource.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}
