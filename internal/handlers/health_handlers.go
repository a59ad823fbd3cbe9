package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger is a dependency the readiness probe must be able to reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints for readiness and liveness probes
type HealthHandler struct {
	startTime       time.Time
	readinessChecks map[string]func(context.Context) error
	logger          *zap.Logger
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Details   map[string]string `json:"details,omitempty"`
}

func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	h := &HealthHandler{
		startTime:       time.Now(),
		readinessChecks: make(map[string]func(context.Context) error),
		logger:          logger,
	}
	if db != nil {
		h.readinessChecks["database"] = db.Ping
	}
	return h
}

// AddReadinessCheck registers another dependency for /readyz.
func (h *HealthHandler) AddReadinessCheck(name string, check func(context.Context) error) {
	h.readinessChecks[name] = check
}

// HandleReadiness reports DOWN with 503 when any readiness check fails
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	details := make(map[string]string, len(h.readinessChecks))
	allOk := true
	for name, check := range h.readinessChecks {
		if err := check(ctx); err != nil {
			allOk = false
			details[name] = err.Error()
		} else {
			details[name] = "OK"
		}
	}

	status := http.StatusOK
	response := h.response("UP")
	response.Details = details
	if !allOk {
		response.Status = "DOWN"
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, response)
}

// HandleLiveness reports the process is up
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.response("UP"))
}

// HandleHealth handles general health check requests
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *HealthHandler) response(status string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).String(),
	}
}

func (h *HealthHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Error encoding health response", zap.Error(err))
	}
}
