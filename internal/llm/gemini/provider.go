package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/llm"
)

// GenerationParams are the sampling settings of one call
type GenerationParams struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

var (
	probeParams = GenerationParams{Temperature: 0.1, MaxOutputTokens: 20}
	chatParams  = GenerationParams{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 1024}
)

// Generator runs a single generateContent call
type Generator interface {
	Generate(ctx context.Context, credential, model string, params GenerationParams, prompt string) (string, error)
}

// Provider implements llm.Provider for Google Gemini
type Provider struct {
	model      string
	probeModel string
	generator  Generator
}

// NewProvider creates a provider backed by the genai SDK
func NewProvider(cfg config.GeminiConfig) *Provider {
	return NewProviderWithGenerator(cfg, sdkGenerator{})
}

// NewProviderWithGenerator creates a provider with a custom generator
func NewProviderWithGenerator(cfg config.GeminiConfig, g Generator) *Provider {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	probeModel := cfg.ProbeModel
	if probeModel == "" {
		probeModel = "gemini-2.0-flash"
	}
	return &Provider{model: model, probeModel: probeModel, generator: g}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Remote() bool {
	return true
}

func (p *Provider) ValidateCredential(ctx context.Context, credential string) bool {
	if credential == "" {
		return false
	}
	if _, err := p.generator.Generate(ctx, credential, p.probeModel, probeParams, llm.ProbePrompt); err != nil {
		log.Warn().Err(err).Str("provider", p.Name()).Msg("credential validation failed")
		return false
	}
	return true
}

func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	if req.Credential == "" {
		return "", llm.Wrap(p.Name(), fmt.Errorf("missing API key"))
	}
	reply, err := p.generator.Generate(ctx, req.Credential, p.model, chatParams, req.Prompt)
	if err != nil {
		return "", llm.Wrap(p.Name(), err)
	}
	return reply, nil
}

type sdkGenerator struct{}

func (sdkGenerator) Generate(ctx context.Context, credential, model string, params GenerationParams, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(credential))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	generativeModel.SetTemperature(params.Temperature)
	generativeModel.SetMaxOutputTokens(params.MaxOutputTokens)
	if params.TopK > 0 {
		generativeModel.SetTopK(params.TopK)
	}
	if params.TopP > 0 {
		generativeModel.SetTopP(params.TopP)
	}

	resp, err := generativeModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return llm.JoinParts(parts...)
}
