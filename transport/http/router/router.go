package router

import (
	"homecare/config"
	"homecare/infras/metrics"
	"homecare/internal/handlers/booking"
	"homecare/internal/handlers/catalog"
	"homecare/internal/handlers/health"
	"homecare/internal/handlers/worker"
	"homecare/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type DomainHandlers struct {
	Health  health.Handler
	Catalog catalog.Handler
	Worker  worker.Handler
	Booking booking.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	AuthRole       middleware.AuthRole
	Config         *config.Config
}

// SetupRoutes mounts health checks and metrics ahead of the authenticated /v1 API.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		chiMiddleware.Recoverer,
		r.App.CORS(),
		r.App.Tracing,
		r.App.Metrics,
	)

	r.DomainHandlers.Health.Router(router)

	if r.Config.Metrics.Enable {
		metrics.Register()
		router.Handle(r.Config.Metrics.Route, metrics.Handler())
	}

	router.Group(func(api chi.Router) {
		api.Use(
			r.App.RateLimit(),
			r.AuthRole.APIKey,
			r.AuthRole.Auth,
			r.AuthRole.RBAC,
		)

		api.Route("/v1", func(routerGroup chi.Router) {
			r.DomainHandlers.Catalog.Router(routerGroup)
			r.DomainHandlers.Worker.Router(routerGroup)
			r.DomainHandlers.Booking.Router(routerGroup)
		})
	})
}

// Drain flips the health checks to unavailable ahead of shutdown.
func (r *Router) Drain() {
	r.DomainHandlers.Health.Drain()
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		AuthRole:       authRole,
		Config:         cfg,
	}
}
