package health

import (
	"MarketChat/internal/lib/api/response"
	"MarketChat/internal/lib/sl"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// Pinger is any backing service the health check should probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Elapsed string            `json:"elapsed"`
}

func Check(log *slog.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(sl.Module("http.handlers.health"))

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		result := Status{Status: "ok", Checks: map[string]string{}}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				logger.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
				result.Status = "degraded"
				result.Checks[name] = err.Error()
				continue
			}
			result.Checks[name] = "ok"
		}
		result.Elapsed = time.Since(start).String()

		if result.Status != "ok" {
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, response.Ok(result))
	}
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
