package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/llm"
)

// Provider implements llm.Provider for OpenAI-compatible chat completion APIs
type Provider struct {
	name    string
	model   string
	baseURL string
	client  *http.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg config.OpenAIConfig, timeout time.Duration) *Provider {
	return NewCompatibleProvider("openai", cfg.BaseURL, cfg.Model, timeout)
}

// NewCompatibleProvider creates a provider for any API speaking the OpenAI chat format
func NewCompatibleProvider(name, baseURL, model string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Provider{
		name:    name,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return p.name
}

// Remote returns true
func (p *Provider) Remote() bool {
	return true
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ValidateCredential sends a short probe request
func (p *Provider) ValidateCredential(ctx context.Context, credential string) bool {
	if credential == "" {
		return false
	}
	_, err := p.chat(ctx, credential, chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: llm.ProbePrompt}},
		Temperature: 0.1,
		MaxTokens:   20,
	})
	if err != nil {
		log.Warn().Err(err).Str("provider", p.name).Msg("credential validation failed")
		return false
	}
	return true
}

// Complete sends the prompt as a single user message
func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	reply, err := p.chat(ctx, req.Credential, chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: 0.7,
		TopP:        0.95,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", llm.Wrap(p.name, err)
	}
	return reply, nil
}

func (p *Provider) chat(ctx context.Context, credential string, chatReq chatRequest) (string, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d", p.name, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", p.name)
	}

	return llm.JoinParts(chatResp.Choices[0].Message.Content)
}
