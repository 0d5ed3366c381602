package router

import (
	"net/http"

	"resort/infras/metrics"
	"resort/internal/handlers/auth"
	"resort/internal/handlers/booking"
	"resort/internal/handlers/inquiry"
	"resort/internal/handlers/payment"
	"resort/internal/handlers/promocode"
	"resort/internal/handlers/room"
	"resort/internal/handlers/user"
	"resort/transport/http/middleware"
	"resort/transport/http/response"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type DomainHandlers struct {
	Auth      auth.Handler
	User      user.Handler
	Room      room.Handler
	Booking   booking.Handler
	Payment   payment.Handler
	PromoCode promocode.Handler
	Inquiry   inquiry.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	AuthRole       middleware.AuthRole
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		AuthRole:       authRole,
	}
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(r.App.CORS())
	router.Use(r.App.Tracing)
	router.Use(r.App.Metrics)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.WithMessage(w, http.StatusOK, "ok")
	})
	router.Handle("/metrics", metrics.Handler())
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/api", func(routerGroup chi.Router) {
		r.protect(routerGroup)

		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Payment.Router(routerGroup)
		r.DomainHandlers.PromoCode.Router(routerGroup)
		r.DomainHandlers.Inquiry.Router(routerGroup)
	})

	router.Route("/admin-api", func(routerGroup chi.Router) {
		r.protect(routerGroup)

		r.DomainHandlers.Auth.AdminRouter(routerGroup)
		r.DomainHandlers.User.AdminRouter(routerGroup)
		r.DomainHandlers.Room.AdminRouter(routerGroup)
		r.DomainHandlers.Booking.AdminRouter(routerGroup)
		r.DomainHandlers.Payment.AdminRouter(routerGroup)
		r.DomainHandlers.PromoCode.AdminRouter(routerGroup)
		r.DomainHandlers.Inquiry.AdminRouter(routerGroup)
	})
}

func (r *Router) protect(router chi.Router) {
	router.Use(r.App.RateLimit())
	router.Use(r.AuthRole.APIKey)
	router.Use(r.AuthRole.Auth)
	router.Use(r.AuthRole.RBAC)
}
