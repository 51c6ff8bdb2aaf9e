package auth

import "testing"

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "test")

	token, err := tm.GenerateToken("u-1", "ada@example.com", "user")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "ada@example.com" || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	tm := NewTokenManager("test-secret", "test")
	other := NewTokenManager("other-secret", "test")

	token, err := other.GenerateToken("u-1", "ada@example.com", "user")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatalf("expected validation failure for foreign signature")
	}
}

func TestGenerateRequiresUserID(t *testing.T) {
	tm := NewTokenManager("test-secret", "test")
	if _, err := tm.GenerateToken("", "ada@example.com", "user"); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("extract failed: %q, %v", token, err)
	}

	for _, header := range []string{"", "abc.def.ghi", "Basic abc", "Bearer a b"} {
		if _, err := ExtractToken(header); err == nil {
			t.Fatalf("expected error for header %q", header)
		}
	}
}
