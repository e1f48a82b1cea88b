package health

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"homecare/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const checkTimeout = 2 * time.Second

// Check pings one dependency.
type Check func(ctx context.Context) error

type Checks map[string]Check

type Status struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type Handler struct {
	checks   Checks
	draining *atomic.Bool
}

func New(checks Checks) Handler {
	return Handler{
		checks:   checks,
		draining: &atomic.Bool{},
	}
}

// Drain makes every health check answer 503 so the load balancer stops routing here.
func (handler *Handler) Drain() {
	handler.draining.Store(true)
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/health", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.Live)
		routerGroup.Get("/ready", handler.Ready)
	})
}

// Live reports whether the process is serving.
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Data[Status]
// @Failure 503 {object} response.Message
// @Router /health [get]
func (handler *Handler) Live(writer http.ResponseWriter, _ *http.Request) {
	if handler.draining.Load() {
		response.WithPreparingShutdown(writer)

		return
	}

	response.WithJSON(writer, http.StatusOK, Status{Status: "ok"})
}

// Ready pings the database and cache.
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Data[Status]
// @Failure 503 {object} response.Data[Status]
// @Router /health/ready [get]
func (handler *Handler) Ready(writer http.ResponseWriter, request *http.Request) {
	if handler.draining.Load() {
		response.WithPreparingShutdown(writer)

		return
	}

	ctx, cancel := context.WithTimeout(request.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(handler.checks))
	for name := range handler.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	status := Status{Status: "ok", Dependencies: map[string]string{}}
	code := http.StatusOK

	for _, name := range names {
		if err := handler.checks[name](ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")

			status.Dependencies[name] = err.Error()
			status.Status = "unhealthy"
			code = http.StatusServiceUnavailable

			continue
		}

		status.Dependencies[name] = "ok"
	}

	response.WithJSON(writer, code, status)
}
