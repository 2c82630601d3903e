// Package auth provides the API key primitives for device authentication:
// key generation and bcrypt validation. Keys are long-lived secrets presented
// by unattended desktop devices on every poll; only the bcrypt hash and a
// short non-secret display prefix are ever stored.
// See internal/api/sync/authenticator.go for the request-time logic that uses these.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyLength is the length of the random part of the API key in bytes
	APIKeyLength = 32

	// DisplayPrefixLength is the number of characters stored plaintext alongside
	// the hash. Authentication uses it to narrow the candidate set to a few rows
	// before the expensive bcrypt comparison — without it every poll would scan
	// the whole api_keys table running bcrypt per row.
	DisplayPrefixLength = 10

	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 12
)

// GenerateAPIKey creates a new random API key with the given prefix
// Returns: full key (to show once), bcrypt hash (to store), display prefix
func GenerateAPIKey(prefix string) (key string, hash string, displayPrefix string, err error) {
	randomBytes := make([]byte, APIKeyLength)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	fullKey := prefix + base64.RawURLEncoding.EncodeToString(randomBytes)

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(fullKey), BcryptCost)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to hash API key: %w", err)
	}

	displayPrefixStr := fullKey
	if len(fullKey) > DisplayPrefixLength {
		displayPrefixStr = fullKey[:DisplayPrefixLength]
	}

	return fullKey, string(hashBytes), displayPrefixStr, nil
}

// ValidateAPIKey checks if a provided key matches the stored hash
func ValidateAPIKey(providedKey, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(providedKey)) == nil
}

// KeyPrefix returns the display prefix of a presented key, used for the
// candidate-narrowing lookup.
func KeyPrefix(key string) string {
	if len(key) > DisplayPrefixLength {
		return key[:DisplayPrefixLength]
	}
	return key
}
