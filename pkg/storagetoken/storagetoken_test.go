package storagetoken

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStorageToken(t *testing.T) {
	SetSecret("test-secret-key")
	t.Cleanup(func() { SetSecret("") })

	t.Run("Generate creates valid token", func(t *testing.T) {
		token, err := Generate("blob-123", time.Minute)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if token == "" {
			t.Fatal("expected non-empty token")
		}
	})

	t.Run("Validate returns claims for valid token", func(t *testing.T) {
		token, err := Generate("blob-abc", time.Minute)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}

		claims, err := Validate(token)
		if err != nil {
			t.Fatalf("expected valid token, got error: %v", err)
		}
		if claims.BlobID != "blob-abc" {
			t.Errorf("expected BlobID blob-abc, got %s", claims.BlobID)
		}
		if !claims.ExpiresAt.After(time.Now()) {
			t.Error("expected ExpiresAt to be in the future")
		}
	})

	t.Run("Validate rejects garbage", func(t *testing.T) {
		_, err := Validate("not-a-token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Validate rejects tampered signature", func(t *testing.T) {
		token, err := Generate("blob-sig", time.Minute)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		tampered := token[:strings.LastIndex(token, ".")+1] + "AAAA"
		if _, err := Validate(tampered); err == nil {
			t.Fatal("expected tampered token to be rejected")
		}
	})

	t.Run("Validate rejects expired token", func(t *testing.T) {
		token, err := Generate("blob-old", -time.Minute)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if _, err := Validate(token); err == nil {
			t.Fatal("expected expired token to be rejected")
		}
	})

	t.Run("Validate rejects token signed with another secret", func(t *testing.T) {
		token, err := Generate("blob-secret", time.Minute)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		SetSecret("rotated-secret")
		defer SetSecret("test-secret-key")

		if _, err := Validate(token); err == nil {
			t.Fatal("expected token from old secret to be rejected")
		}
	})

	t.Run("ValidateFor rejects other blob ids", func(t *testing.T) {
		token, err := Generate("blob-one", time.Minute)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if err := ValidateFor(token, "blob-one"); err != nil {
			t.Fatalf("expected token to be valid for its blob, got %v", err)
		}
		if err := ValidateFor(token, "blob-two"); !errors.Is(err, ErrBlobMismatch) {
			t.Fatalf("expected ErrBlobMismatch, got %v", err)
		}
	})
}
