package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-session-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, errIssue := IssueSessionToken(testSecret, 7, "amina", "amina@example.org", "coordinator", []string{"manage_events"}, time.Hour)
	if errIssue != nil {
		t.Fatalf("IssueSessionToken: %v", errIssue)
	}

	claims, errParse := ParseSessionToken(testSecret, token)
	if errParse != nil {
		t.Fatalf("ParseSessionToken: %v", errParse)
	}
	if claims.AdminID != 7 {
		t.Fatalf("expected admin_id 7, got %d", claims.AdminID)
	}
	if claims.Username != "amina" || claims.Email != "amina@example.org" {
		t.Fatalf("unexpected identity claims: %+v", claims)
	}
	if claims.Role != "coordinator" {
		t.Fatalf("expected role coordinator, got %q", claims.Role)
	}
	if len(claims.Permissions) != 1 || claims.Permissions[0] != "manage_events" {
		t.Fatalf("unexpected permissions: %v", claims.Permissions)
	}
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	token, errIssue := IssueSessionToken(testSecret, 1, "a", "a@example.org", "admin", nil, -time.Minute)
	if errIssue != nil {
		t.Fatalf("IssueSessionToken: %v", errIssue)
	}

	_, errParse := ParseSessionToken(testSecret, token)
	if !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, errIssue := IssueSessionToken(testSecret, 1, "a", "a@example.org", "admin", nil, time.Hour)
	if errIssue != nil {
		t.Fatalf("IssueSessionToken: %v", errIssue)
	}

	_, errParse := ParseSessionToken("another-secret", token)
	if !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseSessionTokenRejectsTamperedPayload(t *testing.T) {
	t.Parallel()

	token, errIssue := IssueSessionToken(testSecret, 1, "a", "a@example.org", "admin", nil, time.Hour)
	if errIssue != nil {
		t.Fatalf("IssueSessionToken: %v", errIssue)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	// Flip a byte in the payload segment while keeping the signature.
	payload := []byte(parts[1])
	payload[len(payload)/2] ^= 0x01
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, errParse := ParseSessionToken(testSecret, tampered); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", errParse)
	}
}

func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, errParse := ParseSessionToken(testSecret, "not-a-token"); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, errHash := HashPassword("correct horse battery staple")
	if errHash != nil {
		t.Fatalf("HashPassword: %v", errHash)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("expected mismatched password to fail")
	}
}
