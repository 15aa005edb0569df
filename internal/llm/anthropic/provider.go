package anthropic

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

const apiVersion = "2023-06-01"

// Provider implements llm.Provider for the Anthropic Messages API
type Provider struct {
	model   string
	baseURL string
	client  *http.Client
}

// NewProvider creates a new Anthropic provider
func NewProvider(cfg config.AnthropicConfig, timeout time.Duration) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Provider{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "anthropic"
}

func (p *Provider) Remote() bool {
	return true
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	TopK        int                `json:"top_k,omitempty"`
	TopP        float64            `json:"top_p,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *Provider) ValidateCredential(ctx context.Context, credential string) bool {
	if credential == "" {
		return false
	}
	_, err := p.send(ctx, credential, anthropicRequest{
		Model:       p.model,
		MaxTokens:   20,
		Temperature: 0.1,
		Messages:    []anthropicMessage{{Role: "user", Content: llm.ProbePrompt}},
	})
	if err != nil {
		log.Warn().Err(err).Str("provider", p.Name()).Msg("credential validation failed")
		return false
	}
	return true
}

func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	reply, err := p.send(ctx, req.Credential, anthropicRequest{
		Model:       p.model,
		MaxTokens:   1024,
		Temperature: 0.7,
		TopK:        40,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", llm.Wrap(p.Name(), err)
	}
	return reply, nil
}

func (p *Provider) send(ctx context.Context, credential string, anthropicReq anthropicRequest) (string, error) {
	body, err := json.Marshal(anthropicReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", credential)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic returned status %d", resp.StatusCode)
	}

	var anthropicResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&anthropicResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var parts []string
	for _, block := range anthropicResp.Content {
		if block.Type == "" || block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return llm.JoinParts(parts...)
}
