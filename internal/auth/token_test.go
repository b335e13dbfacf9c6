package auth

import (
	"strings"
	"testing"
)

func TestNewSessionToken_Format(t *testing.T) {
	t.Parallel()

	token, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	if !strings.HasPrefix(token, "st_") {
		t.Errorf("Token should start with st_, got: %s", token)
	}
	if len(token) != 3+TokenSecretLen {
		t.Errorf("Token should be %d chars, got: %d", 3+TokenSecretLen, len(token))
	}
	if !ValidateTokenFormat(token) {
		t.Errorf("Generated token should pass format validation: %s", token)
	}
}

func TestNewSessionToken_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewSessionToken()
		if err != nil {
			t.Fatalf("NewSessionToken failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("Duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestValidateTokenFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid", "st_" + strings.Repeat("4f8d2e1b", 8), true},
		{"empty", "", false},
		{"missing prefix", strings.Repeat("4f8d2e1b", 8), false},
		{"wrong prefix", "pk_" + strings.Repeat("4f8d2e1b", 8), false},
		{"too short", "st_abc123", false},
		{"too long", "st_" + strings.Repeat("4f8d2e1b", 9), false},
		{"uppercase hex", "st_" + strings.Repeat("4F8D2E1B", 8), false},
		{"non-hex secret", "st_" + strings.Repeat("zzzzzzzz", 8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ValidateTokenFormat(tt.token); got != tt.want {
				t.Errorf("ValidateTokenFormat(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
