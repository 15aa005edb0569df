package security_test

import (
	"testing"

	"github.com/Rrens/chat-workspace/internal/security"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"trims", "  hello  ", 0, "hello"},
		{"keeps newlines", "line one\nline two", 0, "line one\nline two"},
		{"drops control chars", "bad\x00\x07text", 0, "badtext"},
		{"cuts to max runes", "ünïcödé title", 5, "ünïcö"},
		{"blank", " \t\n ", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := security.SanitizeText(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("SanitizeText(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}
