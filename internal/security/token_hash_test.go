package security

import (
	"strings"
	"testing"
)

func TestHashToken(t *testing.T) {
	h1 := HashToken("test-refresh-token-123")
	if h1 != HashToken("test-refresh-token-123") {
		t.Error("HashToken not consistent")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(h1))
	}
	if h1 == HashToken("test-refresh-token-124") {
		t.Error("HashToken produced same hash for different tokens")
	}
}

func TestTokenHashEqual(t *testing.T) {
	token := "correct-token"
	stored := HashToken(token)
	flipped := []byte(stored)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	testCases := []struct {
		name   string
		token  string
		stored string
		want   bool
	}{
		{"match", token, stored, true},
		{"wrong token", "wrong-token", stored, false},
		{"longer hash", token, "a" + stored, false},
		{"same length different content", token, string(flipped), false},
		{"empty inputs", "", "", false},
		{"empty token", "", stored, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TokenHashEqual(tc.token, tc.stored); got != tc.want {
				t.Errorf("TokenHashEqual = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewResetToken(t *testing.T) {
	raw, hash, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if len(raw) != 64 {
		t.Errorf("raw token length = %d, want 64", len(raw))
	}
	if hash != HashToken(raw) {
		t.Error("reset token hash should be the SHA-256 of the raw token")
	}
	if strings.Contains(hash, raw) {
		t.Error("hash must not contain the raw token")
	}
	raw2, _, _ := NewResetToken()
	if raw == raw2 {
		t.Error("two reset tokens should differ")
	}
}
