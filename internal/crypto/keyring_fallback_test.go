//go:build !darwin

package crypto

import (
	"errors"
	"testing"
)

func TestFallbackKeyring_ReadsEnvironment(t *testing.T) {
	t.Setenv("FACTURAS_API_TOKEN", "secret")
	k := NewKeyring()

	got, err := k.Get(APITokenName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "secret" {
		t.Fatalf("expected secret, got %q", got)
	}
}

func TestFallbackKeyring_MissingSecret(t *testing.T) {
	t.Setenv("FACTURAS_CACHE_KEY", "")
	k := NewKeyring()

	if _, err := k.Get(CacheKeyName); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := k.Set(CacheKeyName, "abc"); err == nil {
		t.Fatal("expected Set to fail without a system keyring")
	}
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GenerateKey()
	if len(a) != 64 || a == b {
		t.Fatalf("expected distinct 64-char keys, got %q and %q", a, b)
	}
}
