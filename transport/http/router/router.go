package router

import (
	"github.com/go-chi/chi/v5"

	"innkeeper/internal/handlers/backup"
	"innkeeper/internal/handlers/reservation"
	"innkeeper/transport/http/middleware"
)

type DomainHandlers struct {
	Reservation reservation.Handler
	Backup      backup.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Auth           middleware.Auth
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.Auth.Auth)

		r.DomainHandlers.Reservation.Router(routerGroup)
		r.DomainHandlers.Backup.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, auth middleware.Auth) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Auth:           auth,
	}
}
