package llm

import (
	"context"

	"github.com/Rrens/chat-workspace/internal/domain"
)

// Request carries one completion call. Only the latest user message is sent as Prompt.
type Request struct {
	Prompt     string
	Credential string
	// Profile lets local responders personalize replies; remote providers ignore it
	Profile domain.Profile
}

// Provider defines the interface for text completion providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// Remote reports whether the provider calls an external API with the user's credential
	Remote() bool

	// ValidateCredential probes the provider with a tiny request. It never errors.
	ValidateCredential(ctx context.Context, credential string) bool

	// Complete returns the reply text for req.Prompt
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderFactory creates a new provider instance
type ProviderFactory func() Provider
