//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"innkeeper/config"
	"innkeeper/infras/jwt"
	"innkeeper/infras/kafka"
	"innkeeper/infras/objstore"
	"innkeeper/infras/otel"
	"innkeeper/infras/redis"
	"innkeeper/shared/cache"
	"innkeeper/transport/http"
	"innkeeper/transport/http/middleware"
	"innkeeper/transport/http/router"

	reservationRepository "innkeeper/internal/domains/reservation/repository"
	reservationService "innkeeper/internal/domains/reservation/service"
	reservationHandler "innkeeper/internal/handlers/reservation"

	backupService "innkeeper/internal/domains/backup/service"
	backupHandler "innkeeper/internal/handlers/backup"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	otel.New,
	redis.New,
	objstore.New,
	kafka.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var backupDomain = wire.NewSet(
	backupService.New,
)

var domains = wire.NewSet(
	reservationDomain,
	backupDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	reservationHandler.New,
	backupHandler.New,
	router.New,
)

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
