package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/chat-workspace/internal/api/handler"
	customMiddleware "github.com/Rrens/chat-workspace/internal/api/middleware"
	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/llm"
	"github.com/Rrens/chat-workspace/internal/security"
	"github.com/Rrens/chat-workspace/internal/service"
)

// Dependencies are the wired components the router serves
type Dependencies struct {
	Store       domain.KVStore
	Profiles    *service.ProfileManager
	Controller  *service.ConversationController
	Providers   *llm.Router
	Events      handler.Subscriber
	JWTManager  *security.JWTManager
	RateLimiter customMiddleware.Limiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	profileHandler := handler.NewProfileHandler(deps.Profiles, deps.JWTManager)
	conversationHandler := handler.NewConversationHandler(deps.Controller)
	eventsHandler := handler.NewEventsHandler(deps.Events)

	authMiddleware := customMiddleware.NewAuthMiddleware(deps.JWTManager, cfg.Auth.Disabled || deps.JWTManager == nil)
	requireProfile := customMiddleware.RequireProfile(deps.Profiles.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		// The event stream is long-lived and must not get the request timeout
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/events", eventsHandler.Stream)
		})

		r.Group(func(r chi.Router) {
			if cfg.Server.MiddlewareTimeout > 0 {
				r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
			}

			// Health check
			r.Get("/health", handler.HealthCheck)
			r.Get("/ready", handler.ReadyCheck(deps.Store))

			r.Get("/profile", profileHandler.Get)
			r.Post("/profile/setup", profileHandler.Setup)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Use(requireProfile)

				r.Put("/profile", profileHandler.Update)
				r.Get("/greeting", profileHandler.Greeting)
				r.Get("/providers", handler.ListProviders(deps.Providers))

				r.Route("/conversations", func(r chi.Router) {
					r.Get("/", conversationHandler.List)
					r.Post("/", conversationHandler.Create)
					r.Delete("/", conversationHandler.ClearAll)
					r.Get("/active", conversationHandler.Active)

					r.Route("/{conversationID}", func(r chi.Router) {
						r.Get("/", conversationHandler.Open)
						r.Patch("/", conversationHandler.Rename)
						r.Delete("/", conversationHandler.Delete)
					})
				})

				r.Group(func(r chi.Router) {
					if deps.RateLimiter != nil {
						r.Use(customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit)
					}
					r.Post("/messages", conversationHandler.Send)
				})
			})
		})
	})

	return r
}
