// Package httpapi is the backend's HTTP surface: the auth API, health and
// Prometheus endpoints, served by a chi router.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/machinewatch/internal/api"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the handlers and middleware.
func NewRouter(h *AuthHandler, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(logger.With("module", "http")))
	r.Use(Metrics)

	r.Post(api.PathSignIn, h.SignIn)
	r.Post(api.PathSignOut, h.SignOut)
	r.Get(api.PathSession, h.Session)

	r.Get(api.PathLive, Live)
	r.Method(http.MethodGet, api.PathMetrics, promhttp.Handler())

	return r
}
