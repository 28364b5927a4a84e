package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventreg/internal/delivery/http/helpers"
)

// Pinger is implemented by dependencies the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthResponse is the data of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type HealthController struct {
	Logger  *slog.Logger
	Checks  map[string]Pinger
	Timeout time.Duration
}

func NewHealthController(logger *slog.Logger, checks map[string]Pinger) *HealthController {
	return &HealthController{
		Logger:  logger,
		Checks:  checks,
		Timeout: 2 * time.Second,
	}
}

// Health godoc
// @Summary Health check
// @Description Pings the store and, when configured, the notification queue.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.Timeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(c.Checks))}
	for name, p := range c.Checks {
		if err := p.Ping(ctx); err != nil {
			c.Logger.WarnContext(ctx, "health check failed", "check", name, "err", err)
			resp.Status = "degraded"
			resp.Checks[name] = "down"
			continue
		}
		resp.Checks[name] = "up"
	}
	if resp.Status != "ok" {
		helpers.WriteJSONSuccess(w, http.StatusServiceUnavailable, resp)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}
