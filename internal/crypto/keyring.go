package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Keyring provides secure secret storage abstraction
type Keyring interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
	IsAvailable() bool
}

const (
	ServiceName  = "facturas"
	APITokenName = "api-token" // Bearer token for the backend
	CacheKeyName = "cache-key" // Offline cache encryption key
)

// ErrNotFound is returned when a secret has not been stored
var ErrNotFound = errors.New("secret not found")

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	return newPlatformKeyring()
}

// EnvName is the environment variable consulted for a secret when no
// system keyring is available
func EnvName(name string) string {
	return "FACTURAS_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// GenerateKey returns a random hex key suitable for cache encryption
func GenerateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
