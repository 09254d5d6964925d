package controllers

import (
	"context"
	"net/http"

	"github.com/aurelia-jewels/aurelia-backend/api/responses"
	"github.com/aurelia-jewels/aurelia-backend/pkg/config"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aurelia-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the hard dependencies. The upstream mock is reported
// but never fails readiness; the service runs without it.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, upstream Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aurelia-Env", cfg.App.Env)
		ctx := r.Context()

		checks := map[string]string{}
		ready := true

		checks["db"] = pingStatus(ctx, db)
		if checks["db"] != "ok" {
			ready = false
		}
		checks["redis"] = pingStatus(ctx, redis)
		if checks["redis"] != "ok" {
			ready = false
		}
		checks["upstream"] = pingStatus(ctx, upstream)

		if !ready {
			if logg != nil {
				logg.Warn(logg.WithFields(ctx, map[string]any{"checks": checks}), "readiness check failed")
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"checks": checks,
			})
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}
