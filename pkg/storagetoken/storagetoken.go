// Package storagetoken signs short-lived access tokens for stored blobs.
// A token grants read access to exactly one blob id until it expires.
package storagetoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const fallbackSecret = "groupchat-storage-token-fallback"

var (
	secret = []byte(fallbackSecret)

	ErrInvalidToken = errors.New("invalid storage token")
	ErrBlobMismatch = errors.New("token does not grant access to this blob")
)

type Claims struct {
	BlobID string `json:"bid"`
	jwt.RegisteredClaims
}

func SetSecret(s string) {
	if s == "" {
		secret = []byte(fallbackSecret)
		return
	}
	secret = []byte(s)
}

func Generate(blobID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		BlobID: blobID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   blobID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateFor checks the token and that it was issued for blobID.
func ValidateFor(tokenString, blobID string) error {
	claims, err := Validate(tokenString)
	if err != nil {
		return err
	}
	if claims.BlobID != blobID {
		return ErrBlobMismatch
	}
	return nil
}
