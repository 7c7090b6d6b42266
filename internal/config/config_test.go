package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("FACTURAS_API_BASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "NIT", cfg.API.NITParam)
	assert.Equal(t, 30, cfg.Invoice.DueDays)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := "api:\n  base_url: https://facturas.example.com\n  timeout: 5s\ninvoice:\n  due_days: 45\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0644))

	t.Setenv("FACTURAS_API_BASE_URL", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://facturas.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 45, cfg.Invoice.DueDays)
	// Unset keys keep their defaults
	assert.Equal(t, "Q", cfg.Invoice.CurrencySign)

	t.Setenv("FACTURAS_API_BASE_URL", "http://10.0.0.5:8080")
	t.Setenv("FACTURAS_DUE_DAYS", "15")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.Invoice.DueDays)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "ftp://backend"
	cfg.API.NITParam = " "
	cfg.Invoice.DueDays = -1
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "scheme 'ftp'")
	assert.Contains(t, msg, "api.nit_param")
	assert.Contains(t, msg, "invoice.due_days")
	assert.Contains(t, msg, "log.format")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://api.example.gt"

	require.NoError(t, cfg.Save(path))

	t.Setenv("FACTURAS_API_BASE_URL", "")
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.gt", loaded.API.BaseURL)
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("invoice:\n  due_days: 45\n"), 0644))

	t.Setenv("FACTURAS_DUE_DAYS", "15")
	t.Setenv("FACTURAS_LOG_LEVEL", "debug")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Invoice.DueDays)
	assert.Equal(t, DefaultConfig().Log.Level, cfg.Log.Level)
}
