package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/avoronov/eventhub/internal/config"
	"github.com/avoronov/eventhub/internal/transport/http/handlers"
	authmw "github.com/avoronov/eventhub/internal/transport/http/middleware"
)

type Handlers struct {
	Events       *handlers.EventsHandler
	Requests     *handlers.RequestsHandler
	Categories   *handlers.CategoriesHandler
	Users        *handlers.UsersHandler
	Compilations *handlers.CompilationsHandler
	Health       *handlers.HealthHandler
}

func New(h Handlers, auth *authmw.AuthMiddleware, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(authmw.RequestID)
	r.Use(authmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(authmw.AccessLog)

	if cfg.RLEnabled {
		r.Use(httprate.Limit(
			cfg.RLLimit,
			cfg.RLWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
	}

	r.Get("/healthz", h.Health.Healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/events", h.Events.ListPublic)
		r.Get("/events/{event_id}", h.Events.GetPublic)

		r.Get("/categories", h.Categories.List)
		r.Get("/categories/{cat_id}", h.Categories.Get)

		r.Get("/compilations", h.Compilations.List)
		r.Get("/compilations/{comp_id}", h.Compilations.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)

			r.Post("/events", h.Events.Create)
			r.Patch("/events/{event_id}", h.Events.Update)
			r.Delete("/events/{event_id}", h.Events.Delete)
			r.Get("/my/events", h.Events.ListMine)
			r.Get("/my/events/{event_id}", h.Events.GetMine)

			r.Post("/events/{event_id}/requests", h.Requests.Create)
			r.Patch("/requests/{request_id}/cancel", h.Requests.Cancel)
			r.Get("/my/requests", h.Requests.ListOwn)
			r.Get("/events/{event_id}/requests", h.Requests.ListForEvent)
			r.Patch("/events/{event_id}/requests", h.Requests.UpdateStatuses)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)
			r.Use(auth.RequireAdmin)

			r.Get("/admin/events", h.Events.Search)
			r.Patch("/admin/events/{event_id}", h.Events.Moderate)

			r.Post("/admin/categories", h.Categories.Create)
			r.Patch("/admin/categories/{cat_id}", h.Categories.Rename)
			r.Delete("/admin/categories/{cat_id}", h.Categories.Delete)

			r.Post("/admin/users", h.Users.Register)
			r.Get("/admin/users", h.Users.List)
			r.Delete("/admin/users/{user_id}", h.Users.Delete)

			r.Post("/admin/compilations", h.Compilations.Create)
			r.Patch("/admin/compilations/{comp_id}", h.Compilations.Update)
			r.Delete("/admin/compilations/{comp_id}", h.Compilations.Delete)
		})
	})

	return r
}
