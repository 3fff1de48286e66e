// Package server wires handlers, middleware and routes into one http.Handler.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"chrona/internal/handlers"
	mw "chrona/internal/middleware"
	"chrona/internal/services"
)

// TokenService validates session tokens and reports their lifetime, which
// the session cookie mirrors.
type TokenService interface {
	mw.TokenValidator
	TTL() time.Duration
}

type Options struct {
	Services *services.Services
	Store    handlers.Pinger
	Tokens   TokenService
	Logger   *zap.Logger

	// Google enables /api/auth/google when set.
	Google      handlers.GoogleProvider
	FrontendURL string

	SecureCookie bool
	CORSOrigins  []string
}

func NewRouter(o Options) http.Handler {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	origins := o.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	svc := o.Services
	authHandler := handlers.NewAuthHandler(svc.Users, o.Tokens.TTL(), o.SecureCookie, log)
	userHandler := handlers.NewUserHandler(svc.Users, log)
	healthHandler := handlers.NewHealthHandler(o.Store, log)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard, log)
	noteHandler := handlers.NewNoteHandler(svc.Notes, log)
	journalHandler := handlers.NewJournalHandler(svc.Journal, log)
	taskHandler := handlers.NewTaskHandler(svc.Tasks, log)
	eventHandler := handlers.NewEventHandler(svc.Events, log)
	authMW := mw.NewAuthMiddleware(o.Tokens, svc.Users, log)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.Get)
		api.Post("/register", authHandler.Register)
		api.Post("/login", authHandler.Login)
		api.Post("/logout", authHandler.Logout)
		if o.Google != nil {
			google := handlers.NewGoogleAuthHandler(authHandler, o.Google, o.FrontendURL)
			api.Get("/auth/google", google.Start)
			api.Get("/auth/google/callback", google.Callback)
		}

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)

			pr.Get("/me", userHandler.GetMe)
			pr.Patch("/me", userHandler.UpdateMe)
			pr.Get("/dashboard", dashboardHandler.Get)

			pr.Route("/notes", func(nr chi.Router) {
				nr.Get("/", noteHandler.List)
				nr.Post("/", noteHandler.Create)
				nr.Get("/tags", noteHandler.Tags)
				nr.Get("/{id}", noteHandler.Get)
				nr.Put("/{id}", noteHandler.Update)
				nr.Delete("/{id}", noteHandler.Delete)
			})

			pr.Route("/journal", func(jr chi.Router) {
				jr.Get("/", journalHandler.List)
				jr.Post("/", journalHandler.Create)
				jr.Get("/{id}", journalHandler.Get)
				jr.Put("/{id}", journalHandler.Update)
				jr.Delete("/{id}", journalHandler.Delete)
			})

			pr.Route("/tasks", func(tr chi.Router) {
				tr.Get("/", taskHandler.List)
				tr.Post("/", taskHandler.Create)
				tr.Get("/stats", taskHandler.Stats)
				tr.Get("/by-category", taskHandler.ByCategory)
				tr.Patch("/bulk", taskHandler.BulkUpdate)
				tr.Get("/{id}", taskHandler.Get)
				tr.Put("/{id}", taskHandler.Update)
				tr.Delete("/{id}", taskHandler.Delete)
			})

			pr.Route("/events", func(er chi.Router) {
				er.Get("/", eventHandler.List)
				er.Post("/", eventHandler.Create)
				er.Get("/upcoming", eventHandler.Upcoming)
				er.Get("/today", eventHandler.Today)
				er.Get("/stats", eventHandler.Stats)
				er.Get("/search", eventHandler.Search)
				er.Delete("/bulk/delete", eventHandler.BulkDelete)
				er.Get("/{id}", eventHandler.Get)
				er.Put("/{id}", eventHandler.Update)
				er.Delete("/{id}", eventHandler.Delete)
			})
		})
	})

	return r
}
