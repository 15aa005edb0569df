package demo

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/llm"
)

const helpReply = `I'm here to show what this chat workspace can do! You can:

• Send messages and get replies
• Start new conversations
• Rename or delete conversations in your history
• Update your profile and add an API key

Everything you see here works without an API key.`

var cannedReplies = []string{
	`Hello %[1]s! I understand you're asking about "%[2]s". This is a demo response from the chat workspace.`,
	`That's an interesting question about "%[2]s"! This demo mode answers without calling a real model.`,
	`Thanks for your message regarding "%[2]s". This demonstration shows how conversations are handled end to end.`,
	`I appreciate your input about "%[2]s". Your message is stored in the conversation history like any other.`,
	`Great question about "%[2]s"! Add an API key to your profile to get real answers.`,
	`Your message "%[2]s" is noted. Demo replies are picked from a small canned set.`,
}

// Provider answers locally with keyword-driven canned replies after a random delay
type Provider struct {
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewProvider creates a demo provider
func NewProvider(cfg config.DemoConfig) *Provider {
	return NewProviderWithSource(cfg, rand.NewSource(time.Now().UnixNano()))
}

// NewProviderWithSource creates a demo provider with a fixed random source
func NewProviderWithSource(cfg config.DemoConfig, src rand.Source) *Provider {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &Provider{
		minDelay: cfg.MinDelay,
		maxDelay: cfg.MaxDelay,
		rnd:      rand.New(src),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "demo"
}

// Remote returns false: no credential is used
func (p *Provider) Remote() bool {
	return false
}

// ValidateCredential always succeeds
func (p *Provider) ValidateCredential(context.Context, string) bool {
	return true
}

// Complete waits for the simulated latency and answers. It only fails when ctx ends first.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	timer := time.NewTimer(p.delay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", llm.Wrap(p.Name(), ctx.Err())
	case <-timer.C:
	}

	return p.Reply(req), nil
}

// Reply picks the canned answer for req without waiting
func (p *Provider) Reply(req llm.Request) string {
	msg := req.Prompt
	lower := strings.ToLower(msg)
	name := req.Profile.Name
	interests := req.Profile.Interests

	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return fmt.Sprintf("Hello %s! Welcome to the chat workspace. How can I help you today?", name)
	case strings.Contains(lower, "how are you"):
		return "I'm doing well, thank you for asking! I'm the demo assistant of this chat workspace. What would you like to explore?"
	case strings.Contains(lower, "help") || strings.Contains(lower, "what can you do"):
		return helpReply
	case interests != "" && (strings.Contains(lower, "python") || strings.Contains(lower, "code")):
		return fmt.Sprintf("I see you're interested in %s! Add an API key in your profile and these answers will come from a real model instead of the demo responder.", interests)
	case strings.Contains(lower, "api") || strings.Contains(lower, "key"):
		if req.Profile.UsingRemoteProvider {
			return "You're currently using a real API key for responses, so you're getting model-generated content."
		}
		return "You're currently in demo mode. To get real responses, update your profile and add your API key."
	case interests != "":
		return fmt.Sprintf("Based on your interests in %s, here is what the demo can tell you. %s", interests, p.canned(name, msg))
	default:
		return p.canned(name, msg)
	}
}

func (p *Provider) canned(name, msg string) string {
	p.mu.Lock()
	i := p.rnd.Intn(len(cannedReplies))
	p.mu.Unlock()
	return fmt.Sprintf(cannedReplies[i], name, msg)
}

func (p *Provider) delay() time.Duration {
	span := p.maxDelay - p.minDelay
	if span <= 0 {
		return p.minDelay
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minDelay + time.Duration(p.rnd.Int63n(int64(span)))
}
