package api

import (
	"context"
	"net/http"
	"time"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	critical map[string]Check
	optional map[string]Check
	env      string
	version  string
}

// NewHealthHandler builds readiness from critical checks, whose failure makes
// the instance unready, and optional ones, whose failure only degrades it.
func NewHealthHandler(critical, optional map[string]Check, env, version string) *HealthHandler {
	return &HealthHandler{
		critical: critical,
		optional: optional,
		env:      env,
		version:  version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.critical)+len(h.optional))
	status := "ok"

	for name, check := range h.critical {
		if ping(ctx, check) != nil {
			deps[name] = "down"
			status = "error"
			continue
		}
		deps[name] = "ok"
	}
	for name, check := range h.optional {
		if ping(ctx, check) != nil {
			deps[name] = "down"
			if status == "ok" {
				status = "degraded"
			}
			continue
		}
		deps[name] = "ok"
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	})
}

func ping(ctx context.Context, check Check) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return check(ctx)
}
