//go:build wireinject
// +build wireinject

package di

import (
	"resort/config"
	"resort/infras/jwt"
	"resort/infras/kafka"
	"resort/infras/mailer"
	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/infras/razorpay"
	"resort/infras/redis"
	"resort/infras/s3"
	"resort/permissions"
	"resort/shared/cache"
	"resort/transport/http"
	"resort/transport/http/middleware"
	"resort/transport/http/router"

	"github.com/google/wire"

	authService "resort/internal/domains/auth/service"
	bookingRepository "resort/internal/domains/booking/repository"
	bookingService "resort/internal/domains/booking/service"
	inquiryRepository "resort/internal/domains/inquiry/repository"
	inquiryService "resort/internal/domains/inquiry/service"
	paymentRepository "resort/internal/domains/payment/repository"
	paymentService "resort/internal/domains/payment/service"
	promoCodeRepository "resort/internal/domains/promocode/repository"
	promoCodeService "resort/internal/domains/promocode/service"
	roomRepository "resort/internal/domains/room/repository"
	roomService "resort/internal/domains/room/service"
	userRepository "resort/internal/domains/user/repository"
	userService "resort/internal/domains/user/service"
	authHandler "resort/internal/handlers/auth"
	bookingHandler "resort/internal/handlers/booking"
	inquiryHandler "resort/internal/handlers/inquiry"
	paymentHandler "resort/internal/handlers/payment"
	promoCodeHandler "resort/internal/handlers/promocode"
	roomHandler "resort/internal/handlers/room"
	userHandler "resort/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
	mailer.New,
	razorpay.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
	authService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	paymentRepository.New,
	paymentService.New,
	promoCodeRepository.New,
	promoCodeService.New,
)

var inquiryDomain = wire.NewSet(
	inquiryRepository.New,
	inquiryService.New,
)

var domains = wire.NewSet(
	userDomain,
	roomDomain,
	bookingDomain,
	inquiryDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	bookingHandler.New,
	paymentHandler.New,
	promoCodeHandler.New,
	inquiryHandler.New,
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
