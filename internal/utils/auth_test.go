package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2!" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter2!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	chatterID := uuid.New()
	token, err := GenerateAccessToken(chatterID, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	got, err := ParseAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if got != chatterID {
		t.Errorf("subject = %s, want %s", got, chatterID)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(token, "other"); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(token, "secret"); err == nil {
		t.Error("expired token must not validate")
	}
}
