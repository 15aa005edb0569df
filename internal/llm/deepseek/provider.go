package deepseek

import (
	"time"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/llm/openai"
)

// NewProvider creates a DeepSeek provider. The API is OpenAI compatible.
func NewProvider(cfg config.DeepSeekConfig, timeout time.Duration) *openai.Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.deepseek.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "deepseek-chat"
	}
	return openai.NewCompatibleProvider("deepseek", baseURL, model, timeout)
}
