package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/andy/facturas/internal/api"
	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/config"
	"github.com/andy/facturas/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoicesBody = `[
	{"_id":"f1","NIT":"123","nombreCliente":"Ana","fecha":"2025-03-10T12:00:00.000Z","serie":"A","numeroFactura":1,"monto":100},
	{"_id":"f2","NIT":"456","nombreCliente":"Luis","fecha":"2025-03-11T12:00:00.000Z","serie":"A","numeroFactura":2,"monto":50},
	{"NIT":"123","nombreCliente":"Ana","serie":"B","numeroFactura":3,"monto":50}
]`

// newCLIApp wires the commands to a fake backend
func newCLIApp(t *testing.T, h http.HandlerFunc) *app.App {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	client := api.New(api.Options{BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: zerolog.Nop()})
	invoices := service.NewInvoiceStore(client, nil, zerolog.Nop())
	payments := service.NewPaymentStore(client, nil, zerolog.Nop())

	a := &app.App{
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Client:     client,
		Invoices:   invoices,
		Payments:   payments,
		Reports:    service.NewReportService(invoices, payments, cfg.Invoice.DueDays),
	}
	SetApp(a)
	t.Cleanup(func() { SetApp(nil) })
	return a
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		_ = invoicesListCmd.Flags().Set("nit", "")
		_ = invoicesListCmd.Flags().Set("fecha", "")
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInvoicesList_FallsBackToLocalFilter(t *testing.T) {
	newCLIApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("NIT") != "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(invoicesBody))
	})

	out, err := runCLI(t, "invoices", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "3 invoice(s), total Q200.00")
	assert.NotContains(t, out, "Backend filter unavailable")

	out, err = runCLI(t, "invoices", "list", "--nit", "45")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend filter unavailable; showing locally filtered results.")
	assert.Contains(t, out, "Luis")
	assert.NotContains(t, out, "Ana")
	assert.Contains(t, out, "1 invoice(s), total Q50.00")
}

func TestInvoicesList_Empty(t *testing.T) {
	newCLIApp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	out, err := runCLI(t, "invoices", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No invoices found")
}

func TestInvoicesShow_NotFound(t *testing.T) {
	newCLIApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Factura no encontrada"}`))
	})

	_, err := runCLI(t, "invoices", "show", "nope")
	require.Error(t, err)
	assert.Equal(t, "invoice nope not found", err.Error())
}

func TestInvoicesList_UnauthorizedSuggestsLogin(t *testing.T) {
	newCLIApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := runCLI(t, "invoices", "list")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "facturas login")
}

func TestConfigSetURL_DoesNotPersistEnv(t *testing.T) {
	a := newCLIApp(t, func(w http.ResponseWriter, r *http.Request) {})
	t.Setenv("FACTURAS_LOG_LEVEL", "debug")
	a.Config.Log.Level = "debug"

	out, err := runCLI(t, "config", "set-url", "https://facturas.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend URL set to https://facturas.example.com")

	saved, err := config.LoadFile(a.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "https://facturas.example.com", saved.API.BaseURL)
	assert.Equal(t, config.DefaultConfig().Log.Level, saved.Log.Level)
	assert.Equal(t, "https://facturas.example.com", a.Config.API.BaseURL)

	_, err = runCLI(t, "config", "set-url", "ftp://facturas")
	require.Error(t, err)
	assert.Equal(t, "https://facturas.example.com", a.Config.API.BaseURL)
}
