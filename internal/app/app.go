package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andy/facturas/internal/api"
	"github.com/andy/facturas/internal/config"
	"github.com/andy/facturas/internal/crypto"
	"github.com/andy/facturas/internal/db"
	"github.com/andy/facturas/internal/logger"
	"github.com/andy/facturas/internal/repository"
	"github.com/andy/facturas/internal/service"
	"github.com/rs/zerolog"
)

// App is the dependency injection container for all application components
type App struct {
	Config     *config.Config
	ConfigPath string
	Keyring    crypto.Keyring
	Client     *api.Client

	// Offline cache; both nil when disabled or unavailable
	Cache     *db.DB
	Snapshots *repository.SnapshotRepo

	// Services
	Invoices *service.InvoiceStore
	Payments *service.PaymentStore
	Reports  service.ReportService

	log       zerolog.Logger
	logCloser io.Closer
}

// New creates a new App instance from the default config path
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config. It handles:
// 1. Validating config and creating directories
// 2. Logging setup
// 3. Reading the API token from the keyring
// 4. Opening the offline cache (best effort)
// 5. Creating the API client and services
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logCloser, err := logger.Setup(logger.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	log := logger.WithComponent(logger.ComponentApp)

	keyring := crypto.NewKeyring()

	token, err := keyring.Get(crypto.APITokenName)
	if err != nil && !errors.Is(err, crypto.ErrNotFound) {
		log.Warn().Err(err).Msg("could not read API token, continuing without one")
	}

	client := api.New(api.Options{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		NITParam: cfg.API.NITParam,
		Token:    token,
		Logger:   logger.WithComponent(logger.ComponentAPI),
	})

	a := &App{
		Config:     cfg,
		ConfigPath: config.DefaultConfigPath(),
		Keyring:    keyring,
		Client:     client,
		log:        log,
		logCloser:  logCloser,
	}

	// Typed nil pointers must not leak into the store interfaces
	var invoiceSnapshots repository.InvoiceSnapshotRepository
	var paymentSnapshots repository.PaymentSnapshotRepository
	if cfg.Cache.Enabled {
		if err := a.openCache(); err != nil {
			cacheLog := logger.WithComponent(logger.ComponentCache)
			cacheLog.Warn().Err(err).Msg("offline cache disabled")
		} else {
			invoiceSnapshots = a.Snapshots
			paymentSnapshots = a.Snapshots
		}
	}

	a.Invoices = service.NewInvoiceStore(client, invoiceSnapshots, logger.WithComponent(logger.ComponentInvoice))
	a.Payments = service.NewPaymentStore(client, paymentSnapshots, logger.WithComponent(logger.ComponentPayment))
	a.Reports = service.NewReportService(a.Invoices, a.Payments, cfg.Invoice.DueDays)

	log.Debug().
		Str("base_url", client.BaseURL()).
		Bool("cache", a.Cache != nil).
		Bool("token", token != "").
		Msg("app initialized")

	return a, nil
}

// openCache opens the encrypted snapshot database. A missing key is
// generated and stored; if it cannot be stored the cache stays off.
func (a *App) openCache() error {
	key, err := a.Keyring.Get(crypto.CacheKeyName)
	if err != nil {
		if !errors.Is(err, crypto.ErrNotFound) {
			return err
		}
		key, err = crypto.GenerateKey()
		if err != nil {
			return err
		}
		if err := a.Keyring.Set(crypto.CacheKeyName, key); err != nil {
			return err
		}
		a.log.Info().Msg("generated offline cache key")
	}

	database, err := db.OpenAndMigrate(a.Config.Cache.Path, key)
	if err != nil {
		return err
	}

	a.Cache = database
	a.Snapshots = repository.NewSnapshotRepo(database)
	return nil
}

// CacheInfo returns metadata for each stored snapshot. Empty when the
// cache is off.
func (a *App) CacheInfo(ctx context.Context) ([]repository.SnapshotInfo, error) {
	if a.Snapshots == nil {
		return nil, nil
	}

	var out []repository.SnapshotInfo
	for _, kind := range []string{repository.KindInvoices, repository.KindPayments} {
		info, err := a.Snapshots.Info(ctx, kind)
		if err != nil {
			return nil, err
		}
		if info != nil {
			out = append(out, *info)
		}
	}
	return out, nil
}

// ClearCache wipes the offline snapshot. When the cache could not be
// opened (e.g. the key was lost) the file is removed instead.
func (a *App) ClearCache(ctx context.Context) error {
	if a.Snapshots != nil {
		return a.Snapshots.Clear(ctx)
	}
	return db.Remove(a.Config.Cache.Path)
}

// SaveToken stores the API token for future runs
func (a *App) SaveToken(token string) error {
	return a.Keyring.Set(crypto.APITokenName, token)
}

// DeleteToken removes the stored API token
func (a *App) DeleteToken() error {
	return a.Keyring.Delete(crypto.APITokenName)
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

// UpdateConfig applies mutate to the configuration file at ConfigPath and,
// once the result validates and is saved, to the live Config. The file is
// reloaded without environment overrides so FACTURAS_* values never get
// written to disk.
func (a *App) UpdateConfig(mutate func(*config.Config)) error {
	onDisk, err := config.LoadFile(a.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	mutate(onDisk)
	if err := onDisk.Validate(); err != nil {
		return err
	}

	live := *a.Config
	mutate(&live)
	if err := live.Validate(); err != nil {
		return err
	}

	if err := onDisk.Save(a.ConfigPath); err != nil {
		return err
	}
	*a.Config = live
	return nil
}
