package security_test

import (
	"strings"
	"testing"

	"github.com/Rrens/chat-workspace/internal/security"
)

func TestEncryptor_EncryptDecrypt(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	encryptor, err := security.NewEncryptor(key)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"short", "hello"},
		{"api key", "AIzaSyD-example-gemini-key-0123456789"},
		{"unicode", "ключ 鍵 🔑"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := encryptor.Encrypt([]byte(tt.plaintext))
			if err != nil {
				t.Fatalf("encrypt failed: %v", err)
			}

			decrypted, err := encryptor.Decrypt(ciphertext)
			if err != nil {
				t.Fatalf("decrypt failed: %v", err)
			}

			if string(decrypted) != tt.plaintext {
				t.Errorf("decrypted text does not match: got %q, want %q", decrypted, tt.plaintext)
			}
		})
	}
}

func TestEncryptor_InvalidKeyLength(t *testing.T) {
	for _, keyLen := range []int{0, 15, 17, 31, 33} {
		if _, err := security.NewEncryptor(make([]byte, keyLen)); err == nil {
			t.Errorf("expected error for key length %d, got nil", keyLen)
		}
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	k1, err := security.DeriveKey([]byte("secret"), 32)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	k2, _ := security.DeriveKey([]byte("secret"), 32)
	k3, _ := security.DeriveKey([]byte("other"), 32)

	if string(k1) != string(k2) {
		t.Error("expected the same secret to derive the same key")
	}
	if string(k1) == string(k3) {
		t.Error("expected different secrets to derive different keys")
	}
}

func TestCredential_SealOpen(t *testing.T) {
	encryptor, err := security.NewEncryptorFromSecret("credential-secret")
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	sealed, err := encryptor.SealCredential("my-api-key-123456")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if !strings.HasPrefix(sealed, "enc:v1:") || strings.Contains(sealed, "my-api-key") {
		t.Errorf("credential not sealed: %q", sealed)
	}

	opened, err := encryptor.OpenCredential(sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if opened != "my-api-key-123456" {
		t.Errorf("got %q, want %q", opened, "my-api-key-123456")
	}
}

func TestCredential_NilEncryptorPassthrough(t *testing.T) {
	var encryptor *security.Encryptor

	sealed, err := encryptor.SealCredential("plain-key-123456")
	if err != nil || sealed != "plain-key-123456" {
		t.Fatalf("expected passthrough, got %q, %v", sealed, err)
	}

	opened, err := encryptor.OpenCredential("plain-key-123456")
	if err != nil || opened != "plain-key-123456" {
		t.Fatalf("expected passthrough, got %q, %v", opened, err)
	}

	if _, err := encryptor.OpenCredential("enc:v1:AAAA"); err == nil {
		t.Error("expected error opening an encrypted credential without a secret")
	}
}

func TestNewEncryptorFromSecret_Empty(t *testing.T) {
	if _, err := security.NewEncryptorFromSecret(""); err == nil {
		t.Error("expected error for empty secret")
	}
}
