package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost for password hashes.
const DefaultBcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt. cost <= 0
// falls back to DefaultBcryptCost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a stored hash.
func CheckPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// SessionToken returns a hex-encoded token with 48 bytes of entropy
// (96 characters). Tokens are opaque: validity is purely a store lookup.
func SessionToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// APIKey generates a scoped static key such as
// "dev_1f8c...e2a9b4c1d0". The scope prefix makes accidental key
// mixups visible in logs; the UUID plus 8 random bytes carry the
// entropy.
func APIKey(scope string) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return scope + "_" + id + hex.EncodeToString(suffix), nil
}
