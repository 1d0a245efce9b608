package utils

import (
	"os"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("user-123")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("ParseToken returned %q, want user-123", userID)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	if _, err := ParseToken("not-a-token"); err == nil {
		t.Error("expected an error for a malformed token")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "secret-one")
	token, err := GenerateToken("user-123")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	os.Setenv("JWT_SECRET", "secret-two")
	if _, err := ParseToken(token); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}
