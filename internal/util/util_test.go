package util

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-123", "admin", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Fatalf("role = %q", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-123", "user", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("user-123", "user", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ValidateToken(token, "secret"); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Go & Postgres: a guide  ", "go-postgres-a-guide"},
		{"UPPER lower 123", "upper-lower-123"},
		{"---", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReadTimeMinutes(t *testing.T) {
	if got := ReadTimeMinutes(""); got != 1 {
		t.Fatalf("empty content = %d, want 1", got)
	}
	if got := ReadTimeMinutes("one two three"); got != 1 {
		t.Fatalf("3 words = %d, want 1", got)
	}
	if got := ReadTimeMinutes(strings.Repeat("word ", 200)); got != 1 {
		t.Fatalf("200 words = %d, want 1", got)
	}
	if got := ReadTimeMinutes(strings.Repeat("word ", 201)); got != 2 {
		t.Fatalf("201 words = %d, want 2", got)
	}
	if got := ReadTimeMinutes(strings.Repeat("word ", 1000)); got != 5 {
		t.Fatalf("1000 words = %d, want 5", got)
	}
}
