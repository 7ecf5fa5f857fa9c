package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	sec := "secret123"
	exp := time.Now().Add(5 * time.Minute).Unix()

	tok := GenerateStreamToken(sec, "stream-a", exp)
	sid, gotExp, err := ValidateStreamToken(sec, tok, "stream-a", time.Now(), 60)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if sid != "stream-a" || gotExp != exp {
		t.Fatalf("mismatch: %s/%d", sid, gotExp)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	tok := GenerateStreamToken("secret123", "stream-a", time.Now().Add(time.Minute).Unix())
	if tok[0] == 'A' {
		tok = "B" + tok[1:]
	} else {
		tok = "A" + tok[1:]
	}
	if _, _, err := ValidateStreamToken("secret123", tok, "stream-a", time.Now(), 60); err == nil {
		t.Fatalf("expected error for tampered token")
	}
}

func TestWrongStreamRejected(t *testing.T) {
	tok := GenerateStreamToken("secret123", "stream-a", time.Now().Add(time.Minute).Unix())
	_, _, err := ValidateStreamToken("secret123", tok, "stream-b", time.Now(), 60)
	if !errors.Is(err, ErrTokenStream) {
		t.Fatalf("expected ErrTokenStream, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tok := GenerateStreamToken("secret123", "stream-a", time.Now().Add(-10*time.Minute).Unix())
	_, _, err := ValidateStreamToken("secret123", tok, "stream-a", time.Now(), 60)
	if !errors.Is(err, ErrTokenExp) {
		t.Fatalf("expected ErrTokenExp, got %v", err)
	}
}
