package auth

import (
	"strings"
	"testing"
	"time"

	"fuelstation/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-0123456789", 15*time.Minute, 24*time.Hour)
	user := &models.User{UserID: "user-anna", Username: "anna", Role: models.RoleManager}

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if claims.UserID != "user-anna" || claims.Username != "anna" || claims.Role != models.RoleManager {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	issuerA := NewJWTManager("secret-a-0123456789", 15*time.Minute, 24*time.Hour)
	issuerB := NewJWTManager("secret-b-0123456789", 15*time.Minute, 24*time.Hour)

	token, err := issuerA.GenerateToken(&models.User{UserID: "u", Username: "u", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := issuerB.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for foreign secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret-0123456789", -time.Minute, 24*time.Hour)
	token, err := m.GenerateToken(&models.User{UserID: "u", Username: "u", Role: models.RoleAttendant})
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestExtractToken(t *testing.T) {
	if _, err := ExtractToken(""); err == nil {
		t.Fatal("expected error for empty header")
	}
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Fatal("expected error for non-bearer header")
	}
	token, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("ExtractToken error: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("petrol4ever")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if err := CheckPassword("petrol4ever", hash); err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if err := CheckPassword("diesel4ever", hash); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"petrol4ever", true},
		{"short1", false},
		{"onlyletters", false},
		{"0123456789", false},
		// bcrypt refuses inputs over 72 bytes; validation must catch this
		// before any account document is written
		{strings.Repeat("a1", 40), false},
	}
	for _, tc := range cases {
		err := ValidatePasswordStrength(tc.password)
		if tc.ok && err != nil {
			t.Fatalf("ValidatePasswordStrength(%q) unexpected error: %v", tc.password, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ValidatePasswordStrength(%q) expected error", tc.password)
		}
	}
}
