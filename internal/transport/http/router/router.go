package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/eleven-am/eventhub/internal/transport/http/handlers"
	"github.com/eleven-am/eventhub/internal/transport/http/middleware"
	"github.com/eleven-am/eventhub/internal/transport/http/response"
)

type RateLimit struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type Deps struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Events     *handlers.EventsHandler
	Categories *handlers.CategoriesHandler
	Users      *handlers.UsersHandler

	AuthMW *middleware.AuthMiddleware

	// Metrics wraps every request; MetricsHandler serves /metrics. Both are optional.
	Metrics        func(http.Handler) http.Handler
	MetricsHandler http.Handler

	RateLimit RateLimit
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil || deps.Auth == nil || deps.Events == nil || deps.Categories == nil || deps.Users == nil {
		return nil, fmt.Errorf("router: nil handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("router: nil auth middleware")
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog)
	if deps.Metrics != nil {
		r.Use(deps.Metrics)
	}
	if deps.RateLimit.Enabled {
		r.Use(httprate.Limit(
			deps.RateLimit.Requests,
			deps.RateLimit.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				response.Fail(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
			}),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, r, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	r.Get("/healthz", deps.Health.Healthz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	requireAuth := deps.AuthMW.Require

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", deps.Auth.SignUp)
		r.Post("/sign-in", deps.Auth.SignIn)
		r.Post("/google", deps.Auth.Google)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", deps.Events.List)
		r.Get("/{id}", deps.Events.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", deps.Events.Create)
			r.Patch("/{id}", deps.Events.Update)
			r.Delete("/{id}", deps.Events.Delete)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", deps.Categories.List)
		r.Get("/{id}", deps.Categories.Get)

		r.With(requireAuth).Post("/", deps.Categories.Create)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireAdmin)
			r.Patch("/{id}", deps.Categories.Update)
			r.Delete("/{id}", deps.Categories.Delete)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.With(requireAuth, middleware.RequireAdmin).Get("/", deps.Users.List)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", deps.Users.Me)
			r.Patch("/me", deps.Users.UpdateMe)
			r.Delete("/me", deps.Users.DeleteMe)
		})

		r.Get("/{id}", deps.Users.Get)
		r.Get("/{id}/events", deps.Events.ListByOwner)
	})

	return r, nil
}
