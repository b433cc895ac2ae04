package controllers

import (
	"net/http"

	"github.com/lunaetstella/smartstock-backend/api/responses"
	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/db"
	pkgerrors "github.com/lunaetstella/smartstock-backend/pkg/errors"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
	"github.com/lunaetstella/smartstock-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SmartStock-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when the database, and redis when
// configured, answer a ping.
func HealthReady(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SmartStock-Env", cfg.App.Env)

		if dbClient != nil {
			if err := dbClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}

		if redisClient != nil {
			if err := redisClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
