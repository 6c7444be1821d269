package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/config"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/handlers"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/middleware"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/service"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/token"
)

// Deps is everything the HTTP layer needs. Ping is optional.
type Deps struct {
	Accounts repository.AccountRepository
	Tickets  repository.TicketRepository
	Tokens   *token.Service
	Ping     func(context.Context) error
}

func New(log zerolog.Logger, deps Deps, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.Origin},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.Preflight)
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	// Services + handlers
	authSvc := service.NewAuthService(deps.Accounts, deps.Tokens, cfg.TokenTTL, cfg.AdminTokenTTL)
	ticketSvc := service.NewTicketService(deps.Tickets, deps.Accounts)
	gate := middleware.NewGate(log, deps.Tokens, deps.Accounts)

	auth := handlers.NewAuthHTTP(log, authSvc)
	accounts := handlers.NewAccountHTTP(log, deps.Accounts)
	support := handlers.NewSupportHTTP(log, ticketSvc)
	admin := handlers.NewAdminSupportHTTP(log, ticketSvc)
	reports := handlers.NewReportsHTTP(log, ticketSvc)

	// Health
	r.Get("/healthz", handlers.Health(log, deps.Ping))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", handlers.Index())
		r.Get("/health", handlers.Health(log, deps.Ping))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register())
			r.Post("/login", auth.Login())
			r.With(gate.RequireAuth).Get("/me", auth.Me())
		})

		r.With(gate.RequireAuth, middleware.RequireSelfOrRoles(models.RoleAdmin)).
			Get("/accounts/{id}", accounts.Get())

		// Action route; the method check lives in the dispatcher so a wrong
		// verb is a 405 rather than chi's 404.
		r.Group(func(r chi.Router) {
			r.Use(gate.RequireAuth)
			for _, p := range handlers.SupportPaths {
				r.HandleFunc(p, support.Dispatch())
			}
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", auth.AdminLogin())
			r.Group(func(r chi.Router) {
				r.Use(gate.RequireAdmin)
				r.Get("/support/summary", reports.Summary())
				r.Route("/support/tickets", func(r chi.Router) {
					r.Get("/", admin.List())
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", admin.Get())
						r.Patch("/", admin.Update())
						r.Post("/messages", admin.Reply())
					})
				})
			})
		})
	})

	return r
}
