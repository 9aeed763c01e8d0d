package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/angelmondragon/inventory-backend/api/responses"
	"github.com/angelmondragon/inventory-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inventory-Env", cfg.App.Env)
		responses.WriteSuccess(w, "live", map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and reports 503 if any is down.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inventory-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		failed := map[string]string{}
		var firstErr error
		for _, name := range names {
			if err := deps[name].Ping(ctx); err != nil {
				failed[name] = "unavailable"
				if firstErr == nil {
					firstErr = err
				}
			}
		}

		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, firstErr, "dependency unavailable").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, "ready", map[string]string{"status": "ready"})
	}
}
