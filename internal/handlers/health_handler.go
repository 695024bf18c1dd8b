package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"todolists/internal/logger"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// NewStartupStatus creates a status tracking the named steps in order
func NewStartupStatus(steps ...string) *StartupStatus {
	s := &StartupStatus{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// CompleteStep marks a step as completed and updates progress
func (s *StartupStatus) CompleteStep(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.steps {
		if s.steps[i].Name == name {
			s.steps[i].Completed = true
		}
		if s.steps[i].Completed {
			completed++
		}
	}
	s.current = name
	if len(s.steps) > 0 {
		s.progress = (completed * 100) / len(s.steps)
	}
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
	s.progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

type healthResponse struct {
	Status   string        `json:"status"`
	Ready    bool          `json:"ready"`
	Progress int           `json:"progress"`
	Current  string        `json:"current"`
	Steps    []StartupStep `json:"steps"`
	Database string        `json:"database"`
}

// Pinger is satisfied by *database.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports readiness and database reachability
type HealthHandler struct {
	db     Pinger
	status *StartupStatus
	log    *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, status *StartupStatus, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, status: status, log: log.WithComponent("health")}
}

// Healthz answers 200 once startup finished and the database answers a ping, 503 otherwise
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.status.mu.RLock()
	resp := healthResponse{
		Status:   "ok",
		Ready:    h.status.ready,
		Progress: h.status.progress,
		Current:  h.status.current,
		Steps:    append([]StartupStep(nil), h.status.steps...),
		Database: "ok",
	}
	h.status.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.log.WithError(err).Warn("database ping failed")
		resp.Database = "unreachable"
		resp.Status = "degraded"
	}

	status := http.StatusOK
	if !resp.Ready || resp.Database != "ok" {
		if resp.Status == "ok" {
			resp.Status = "starting"
		}
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
