// Package router wires handlers, middleware and the /api route table.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type Deps struct {
	Auth      *usecase.AuthUseCase
	Users     *usecase.UserUseCase
	Leads     *usecase.LeadUseCase
	Companies *usecase.CompanyUseCase
	Tasks     *usecase.TaskUseCase
	Dashboard *usecase.DashboardUseCase

	Health         *handlers.HealthHandler
	AuthLimiter    *middleware.RateLimiter
	AllowedOrigins []string
}

func New(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Auth)
	userHandler := handlers.NewUserHandler(d.Users)
	leadHandler := handlers.NewLeadHandler(d.Leads)
	companyHandler := handlers.NewCompanyHandler(d.Companies)
	taskHandler := handlers.NewTaskHandler(d.Tasks)
	dashboardHandler := handlers.NewDashboardHandler(d.Dashboard)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.KeepPeerAddr)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.Health != nil {
		r.Get("/health", d.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if d.AuthLimiter != nil {
					r.Use(d.AuthLimiter.Handler)
				}
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})
			r.With(middleware.RequireAuth(d.Auth)).Get("/me", authHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Auth))

			r.Get("/users", userHandler.List)
			r.Get("/dashboard/stats", dashboardHandler.Stats)

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", leadHandler.List)
				r.Post("/", leadHandler.Create)
				r.Get("/stats/dashboard", dashboardHandler.Stats)
				r.Get("/{id}", leadHandler.Get)
				r.Put("/{id}", leadHandler.Update)
				r.Delete("/{id}", leadHandler.Delete)
			})

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", companyHandler.List)
				r.Post("/", companyHandler.Create)
				r.Get("/{id}", companyHandler.Get)
				r.Put("/{id}", companyHandler.Update)
				r.Delete("/{id}", companyHandler.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Patch("/{id}/status", taskHandler.UpdateStatus)
				r.Delete("/{id}", taskHandler.Delete)
			})
		})
	})

	return r
}
