//go:build !darwin

package crypto

import (
	"errors"
	"fmt"
	"os"
)

type fallbackKeyring struct{}

func newPlatformKeyring() Keyring {
	return &fallbackKeyring{}
}

// Get reads the secret from its FACTURAS_* environment variable
func (k *fallbackKeyring) Get(name string) (string, error) {
	value := os.Getenv(EnvName(name))
	if value == "" {
		return "", fmt.Errorf("%s environment variable not set: %w", EnvName(name), ErrNotFound)
	}

	return value, nil
}

// Set returns an error suggesting to set the environment variable
func (k *fallbackKeyring) Set(name, value string) error {
	if value == "" {
		return errors.New("value cannot be empty")
	}

	return fmt.Errorf("keyring not available on this platform: please set the %s environment variable", EnvName(name))
}

// Delete returns an error suggesting to unset the environment variable
func (k *fallbackKeyring) Delete(name string) error {
	return fmt.Errorf("keyring not available on this platform: please unset %s manually", EnvName(name))
}

// IsAvailable reports false: secrets can only be read, never stored
func (k *fallbackKeyring) IsAvailable() bool {
	return false
}
