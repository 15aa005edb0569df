package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/api"
	customMiddleware "github.com/Rrens/chat-workspace/internal/api/middleware"
	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/events"
	"github.com/Rrens/chat-workspace/internal/llm"
	"github.com/Rrens/chat-workspace/internal/llm/anthropic"
	"github.com/Rrens/chat-workspace/internal/llm/deepseek"
	"github.com/Rrens/chat-workspace/internal/llm/demo"
	"github.com/Rrens/chat-workspace/internal/llm/gemini"
	"github.com/Rrens/chat-workspace/internal/llm/ollama"
	"github.com/Rrens/chat-workspace/internal/llm/openai"
	"github.com/Rrens/chat-workspace/internal/logging"
	"github.com/Rrens/chat-workspace/internal/repository"
	"github.com/Rrens/chat-workspace/internal/repository/redis"
	"github.com/Rrens/chat-workspace/internal/security"
	"github.com/Rrens/chat-workspace/internal/service"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(cfg.Logging, os.Getenv("ENV") == "production")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer logCloser.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("store", cfg.Store.Driver).
		Str("remote_provider", cfg.LLM.RemoteProvider).
		Msg("Starting chat workspace server")

	ctx := context.Background()

	// Initialize store
	backend, err := repository.NewRegistry().Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer backend.Close()

	// Event bus
	bus := events.NewBus(
		events.WithTopic(cfg.Events.Topic),
		events.WithBufferSize(cfg.Events.BufferSize),
		events.WithVerbose(cfg.Events.Verbose),
	)
	defer bus.Close()

	providers := newProviderRouter(cfg)

	var encryptor *security.Encryptor
	if cfg.Security.CredentialSecret != "" {
		encryptor, err = security.NewEncryptorFromSecret(cfg.Security.CredentialSecret)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize credential encryption")
		}
	} else {
		log.Warn().Msg("security.credential_secret is empty, API keys are stored unencrypted")
	}

	// Initialize services
	opts := []service.Option{service.WithPublisher(bus)}
	registry := service.NewSessionRegistry(backend.Store, cfg.History, opts...)
	messages := service.NewMessageLog(backend.Store, opts...)
	profiles := service.NewProfileManager(backend.Store, providers, encryptor, opts...)
	controller := service.NewConversationController(registry, messages, profiles, providers, cfg.History.KeepEvictedLogs, opts...)

	registry.Load(ctx)
	messages.Load(ctx)
	if profiles.Restore(ctx) {
		controller.StartNew(ctx)
	}

	var jwtManager *security.JWTManager
	if !cfg.Auth.Disabled {
		if cfg.Auth.JWTSecret == "" {
			log.Fatal().Msg("auth.jwt_secret is required unless auth.disabled is set")
		}
		jwtManager = security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	}

	deps := api.Dependencies{
		Store:      backend.Store,
		Profiles:   profiles,
		Controller: controller,
		Providers:  providers,
		Events:     bus,
		JWTManager: jwtManager,
	}
	if limiter, closer := newRateLimiter(cfg, backend); limiter != nil {
		deps.RateLimiter = limiter
		if closer != nil {
			defer closer.Close()
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func newProviderRouter(cfg *config.Config) *llm.Router {
	timeout := cfg.LLM.RequestTimeout
	router := llm.NewRouter("demo", cfg.LLM.RemoteProvider)

	router.RegisterProvider(demo.NewProvider(cfg.LLM.Demo))
	router.RegisterFactory("gemini", func() llm.Provider { return gemini.NewProvider(cfg.LLM.Gemini) })
	router.RegisterFactory("openai", func() llm.Provider { return openai.NewProvider(cfg.LLM.OpenAI, timeout) })
	router.RegisterFactory("deepseek", func() llm.Provider { return deepseek.NewProvider(cfg.LLM.DeepSeek, timeout) })
	router.RegisterFactory("anthropic", func() llm.Provider { return anthropic.NewProvider(cfg.LLM.Anthropic, timeout) })
	router.RegisterFactory("ollama", func() llm.Provider { return ollama.NewProvider(cfg.LLM.Ollama, timeout) })

	if _, err := router.Remote(); err != nil {
		log.Warn().Err(err).Msg("Remote provider is not available, API keys will be rejected")
	}
	return router
}

// newRateLimiter shares the store's Redis connection when there is one
func newRateLimiter(cfg *config.Config, backend *repository.Backend) (customMiddleware.Limiter, *redis.Client) {
	if !cfg.Security.RateLimit.Enabled {
		return nil, nil
	}

	client := backend.Redis
	var owned *redis.Client
	if client == nil {
		c, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Rate limiting disabled: Redis unavailable")
			return nil, nil
		}
		client, owned = c, c
	}

	log.Info().Int("requests_per_minute", cfg.Security.RateLimit.RequestsPerMinute).Msg("Rate limiting enabled")
	return redis.NewRateLimiter(client, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst), owned
}
