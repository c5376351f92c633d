package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/kaanagas/kaanagas-backend/api/responses"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KaanaGas-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores and aggregates every failure
// instead of stopping at the first one.
func HealthReady(cfg *config.Config, logg *logger.Logger, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KaanaGas-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var failures error
		checks := map[string]string{}

		if database == nil {
			failures = multierr.Append(failures, pkgerrors.New(pkgerrors.CodeDependency, "database not wired"))
			checks["database"] = "missing"
		} else if err := database.Ping(ctx); err != nil {
			failures = multierr.Append(failures, err)
			checks["database"] = "down"
		} else {
			checks["database"] = "up"
		}

		if cache == nil {
			failures = multierr.Append(failures, pkgerrors.New(pkgerrors.CodeDependency, "redis not wired"))
			checks["redis"] = "missing"
		} else if err := cache.Ping(ctx); err != nil {
			failures = multierr.Append(failures, err)
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}

		if failures != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, failures, "readiness checks failed").
				WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
