package llm

import (
	"errors"
	"strings"

	"github.com/Rrens/chat-workspace/internal/domain"
)

// ErrEmptyReply is returned when a provider answers with no text
var ErrEmptyReply = errors.New("empty reply")

// ProbePrompt is sent when validating a credential
const ProbePrompt = "Hello! This is a test message to validate the API key."

// JoinParts concatenates reply fragments and rejects a blank result
func JoinParts(parts ...string) (string, error) {
	reply := strings.TrimSpace(strings.Join(parts, ""))
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// Wrap tags err with the provider name
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return &domain.ProviderError{Provider: provider, Err: err}
}
