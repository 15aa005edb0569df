package demo

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/llm"
)

func newTestProvider() *Provider {
	return NewProviderWithSource(config.DemoConfig{}, rand.NewSource(1))
}

func TestReply_KeywordRules(t *testing.T) {
	p := newTestProvider()
	profile := domain.Profile{Name: "Ada", Interests: "python and data"}

	tests := []struct {
		name    string
		prompt  string
		profile domain.Profile
		want    string
	}{
		{"greeting", "Hello there", profile, "Hello Ada!"},
		{"how are you", "How are you today?", domain.Profile{Name: "Ada"}, "I'm doing well"},
		{"help", "Can you help me?", profile, "You can:"},
		{"code with interests", "Show me some code", profile, "interested in python and data"},
		{"api in demo mode", "Where do I put my key?", domain.Profile{Name: "Ada"}, "demo mode"},
		{"api in remote mode", "Where do I put my key?", domain.Profile{Name: "Ada", UsingRemoteProvider: true}, "real API key"},
		{"interests fallback", "Tell me more", profile, "Based on your interests in python and data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := p.Reply(llm.Request{Prompt: tt.prompt, Profile: tt.profile})
			assert.Contains(t, reply, tt.want)
		})
	}
}

func TestReply_CannedQuotesMessage(t *testing.T) {
	p := newTestProvider()
	reply := p.Reply(llm.Request{Prompt: "tell me a story", Profile: domain.Profile{Name: "Bob"}})
	assert.Contains(t, reply, `"tell me a story"`)
}

func TestComplete_NeverFails(t *testing.T) {
	p := NewProviderWithSource(config.DemoConfig{MinDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}, rand.NewSource(7))

	reply, err := p.Complete(context.Background(), llm.Request{Prompt: "anything", Profile: domain.Profile{Name: "Ada"}})
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
	assert.False(t, p.Remote())
	assert.True(t, p.ValidateCredential(context.Background(), ""))
}

func TestComplete_ContextCancelled(t *testing.T) {
	p := NewProviderWithSource(config.DemoConfig{MinDelay: time.Hour, MaxDelay: time.Hour}, rand.NewSource(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, llm.Request{Prompt: "hi"})
	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "demo", perr.Provider)
}

func TestDelay_WithinBounds(t *testing.T) {
	p := NewProviderWithSource(config.DemoConfig{MinDelay: time.Second, MaxDelay: 3 * time.Second}, rand.NewSource(42))
	for i := 0; i < 100; i++ {
		d := p.delay()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 3*time.Second)
	}
}
