package server

import (
	"fmt"
	"net/http"
)

// HealthStatus represents the health of the frame pipeline
type HealthStatus struct {
	Status string                  `json:"status"`
	Checks map[string]*CheckResult `json:"checks"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message"`
}

// Check reports whether the loop is ticking and frames are flowing
func (s *Server) Check() *HealthStatus {
	status := &HealthStatus{
		Status: "healthy",
		Checks: make(map[string]*CheckResult),
	}

	if s.source.Running() {
		status.Checks["frame_loop"] = &CheckResult{Healthy: true, Message: "Frame loop running"}
	} else {
		status.Checks["frame_loop"] = &CheckResult{Healthy: false, Message: "Frame loop stopped"}
	}

	if frame, ok := s.source.Latest(); ok {
		status.Checks["frames"] = &CheckResult{
			Healthy: true,
			Message: fmt.Sprintf("Tick %d of simulation %s", frame.Tick, frame.SimulationID),
		}
	} else {
		status.Checks["frames"] = &CheckResult{Healthy: false, Message: "No frame produced yet"}
	}

	for _, check := range status.Checks {
		if !check.Healthy {
			status.Status = "unhealthy"
		}
	}
	return status
}

// handleHealth serves Check, with 503 when any check fails
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.Check()
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
