//go:build darwin

package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

type darwinKeyring struct{}

func newPlatformKeyring() Keyring {
	return &darwinKeyring{}
}

// Get retrieves a secret from macOS Keychain
func (k *darwinKeyring) Get(name string) (string, error) {
	value, err := keyring.Get(ServiceName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%s not found in keychain: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("failed to retrieve %s from keychain: %w", name, err)
	}

	if value == "" {
		return "", fmt.Errorf("%s is empty: %w", name, ErrNotFound)
	}

	return value, nil
}

// Set stores a secret in macOS Keychain
func (k *darwinKeyring) Set(name, value string) error {
	if value == "" {
		return errors.New("value cannot be empty")
	}

	if err := keyring.Set(ServiceName, name, value); err != nil {
		return fmt.Errorf("failed to store %s in keychain: %w", name, err)
	}

	return nil
}

// Delete removes a secret from macOS Keychain
func (k *darwinKeyring) Delete(name string) error {
	err := keyring.Delete(ServiceName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%s not found in keychain: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s from keychain: %w", name, err)
	}

	return nil
}

// IsAvailable checks if the macOS Keychain is accessible
func (k *darwinKeyring) IsAvailable() bool {
	// Write and immediately delete a throwaway entry
	testKey := "__facturas_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}

	_ = keyring.Delete(ServiceName, testKey)
	return true
}
