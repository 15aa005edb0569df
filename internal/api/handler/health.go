package handler

import (
	"net/http"

	"github.com/Rrens/chat-workspace/internal/api/response"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/llm"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including store connectivity
func ReadyCheck(store domain.KVStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger, ok := store.(domain.Pinger); ok {
			if err := pinger.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "store not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListProviders returns the registered completion providers
func ListProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":       router.ProvidersInfo(),
			"remote_provider": router.RemoteName(),
		})
	}
}
