package security_test

import (
	"testing"
	"time"

	"github.com/Rrens/chat-workspace/internal/security"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	token, err := manager.GenerateAccessToken("Ada", "Python Developer")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	if token == "" {
		t.Error("access token is empty")
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("failed to validate access token: %v", err)
	}

	if claims.Subject != "Ada" || claims.Name != "Ada" {
		t.Errorf("subject mismatch: got %q/%q, want Ada", claims.Subject, claims.Name)
	}

	if claims.Role != "Python Developer" {
		t.Errorf("role mismatch: got %q", claims.Role)
	}
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	// Invalid token format
	if _, err := manager.ValidateAccessToken("invalid-token"); err == nil {
		t.Error("expected error for invalid token, got nil")
	}

	// Empty token
	if _, err := manager.ValidateAccessToken(""); err == nil {
		t.Error("expected error for empty token, got nil")
	}

	// Token signed with different secret
	otherManager := security.NewJWTManager("different-secret-key-32-chars!!", 15*time.Minute)
	token, _ := otherManager.GenerateAccessToken("Ada", "")

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for token signed with different secret, got nil")
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", -time.Minute)

	token, err := manager.GenerateAccessToken("Ada", "")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestJWTManager_MissingSecret(t *testing.T) {
	manager := security.NewJWTManager("", time.Minute)

	if _, err := manager.GenerateAccessToken("Ada", ""); err == nil {
		t.Error("expected error without a secret")
	}
}
