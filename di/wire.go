//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"shareit/config"
	"shareit/infras/otel"
	"shareit/infras/postgres"
	"shareit/infras/redis"
	"shareit/shared/cache"
	"shareit/shared/clock"
	"shareit/transport/http"
	"shareit/transport/http/middleware"
	"shareit/transport/http/router"

	bookingRepository "shareit/internal/domains/booking/repository"
	bookingService "shareit/internal/domains/booking/service"
	commentRepository "shareit/internal/domains/comment/repository"
	itemRepository "shareit/internal/domains/item/repository"
	itemService "shareit/internal/domains/item/service"
	userRepository "shareit/internal/domains/user/repository"
	userService "shareit/internal/domains/user/service"

	bookingHandler "shareit/internal/handlers/booking"
	itemHandler "shareit/internal/handlers/item"
	userHandler "shareit/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	clock.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var itemDomain = wire.NewSet(
	itemRepository.New,
	commentRepository.New,
	itemService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var domains = wire.NewSet(
	userDomain,
	itemDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	userHandler.New,
	itemHandler.New,
	bookingHandler.New,
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
