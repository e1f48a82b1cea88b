//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"homecare/config"
	"homecare/infras/jwt"
	"homecare/infras/kafka"
	"homecare/infras/otel"
	"homecare/infras/postgres"
	"homecare/infras/redis"
	"homecare/internal/schema"
	"homecare/permissions"
	"homecare/shared/cache"
	"homecare/transport/http"
	"homecare/transport/http/middleware"
	"homecare/transport/http/router"

	bookingRepository "homecare/internal/domains/booking/repository"
	bookingService "homecare/internal/domains/booking/service"
	catalogRepository "homecare/internal/domains/catalog/repository"
	catalogService "homecare/internal/domains/catalog/service"
	workerRepository "homecare/internal/domains/worker/repository"
	workerService "homecare/internal/domains/worker/service"

	bookingHandler "homecare/internal/handlers/booking"
	catalogHandler "homecare/internal/handlers/catalog"
	healthHandler "homecare/internal/handlers/health"
	workerHandler "homecare/internal/handlers/worker"

	"github.com/google/wire"
	goRedis "github.com/redis/go-redis/v9"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	schema.NewRegistry,
)

var catalogDomain = wire.NewSet(
	catalogRepository.New,
	catalogService.New,
)

var workerDomain = wire.NewSet(
	workerRepository.New,
	workerService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	wire.Bind(new(catalogService.Bookings), new(bookingRepository.Booking)),
	wire.Bind(new(workerService.Schedule), new(bookingRepository.Booking)),
	bookingService.New,
)

var domains = wire.NewSet(
	catalogDomain,
	workerDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthChecks,
	healthHandler.New,
	catalogHandler.New,
	workerHandler.New,
	bookingHandler.New,
	router.New,
)

func healthChecks(db *postgres.Connection, client *goRedis.Client) healthHandler.Checks {
	return healthHandler.Checks{
		"postgres": db.Write.PingContext,
		"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
