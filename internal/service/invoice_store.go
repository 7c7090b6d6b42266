package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InvoiceAPI is the part of the backend client the invoice store uses
type InvoiceAPI interface {
	CreateInvoice(ctx context.Context, in domain.InvoiceInput) (domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.Filter) ([]domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (domain.Invoice, error)
	UpdateInvoiceDate(ctx context.Context, id string, date time.Time) error
}

// InvoiceState is a point-in-time copy of what the invoice views render
type InvoiceState struct {
	Invoices  []domain.Invoice // Currently visible (filtered) set
	Total     decimal.Decimal  // Sum over Invoices
	Filter    domain.Filter    // Active filter; empty after a full fetch
	FullCount int              // Size of the last full set
	Loading   bool
	Fallback  bool // Invoices were filtered locally after a backend failure
	Err       error
}

// InvoiceStore holds the client-side invoice collection. Every invoice is
// stored once, keyed by Invoice.Key(); the full and filtered views are
// ordered key lists over that collection.
type InvoiceStore struct {
	api      InvoiceAPI
	snapshot repository.InvoiceSnapshotRepository // nil disables the offline cache
	log      zerolog.Logger

	mu          sync.RWMutex
	byKey       map[string]domain.Invoice
	all         []string
	visible     []string
	haveFull    bool
	filter      domain.Filter
	fallback    bool
	lastErr     error
	lastCreated *domain.Invoice
	inflight    int
	filterRefs  []string // Keys of id-less invoices from the last backend filter
}

// NewInvoiceStore creates an invoice store. snapshot may be nil.
func NewInvoiceStore(api InvoiceAPI, snapshot repository.InvoiceSnapshotRepository, log zerolog.Logger) *InvoiceStore {
	return &InvoiceStore{
		api:      api,
		snapshot: snapshot,
		log:      log,
		byKey:    make(map[string]domain.Invoice),
	}
}

// begin marks a request in flight; the returned func clears it
func (s *InvoiceStore) begin() func() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

// Create posts a new invoice. The collection is not touched; callers refetch.
func (s *InvoiceStore) Create(ctx context.Context, in domain.InvoiceInput) (*domain.Invoice, error) {
	done := s.begin()
	defer done()

	inv, err := s.api.CreateInvoice(ctx, in)
	if err != nil {
		s.setErr(err)
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.mu.Lock()
	s.lastCreated = &inv
	s.lastErr = nil
	s.mu.Unlock()

	s.log.Info().Str("id", inv.ID).Str("nit", inv.NIT).Msg("invoice created")
	created := inv
	return &created, nil
}

// FetchAll replaces the full set and resets the filter
func (s *InvoiceStore) FetchAll(ctx context.Context) ([]domain.Invoice, error) {
	done := s.begin()
	defer done()

	invoices, err := s.api.ListInvoices(ctx, domain.Filter{})
	if err != nil {
		s.setErr(err)
		return nil, fmt.Errorf("fetch invoices: %w", err)
	}
	invoices = withRefs(invoices, fullRefPrefix)

	s.mu.Lock()
	s.replaceAll(invoices)
	s.mu.Unlock()

	s.saveSnapshot(ctx, invoices)
	s.log.Debug().Int("count", len(invoices)).Msg("invoices loaded")
	return copyInvoices(invoices), nil
}

// FetchFiltered asks the backend to filter. When the backend fails the
// filter is applied locally over the last full set and no error is returned.
func (s *InvoiceStore) FetchFiltered(ctx context.Context, filter domain.Filter) ([]domain.Invoice, error) {
	filter = filter.Trimmed()
	if filter.IsEmpty() {
		return s.FetchAll(ctx)
	}

	done := s.begin()
	defer done()

	invoices, err := s.api.ListInvoices(ctx, filter)
	if err != nil {
		s.log.Warn().Err(err).
			Str("nit", filter.NIT).
			Str("fecha", filter.Date).
			Msg("backend filter failed, filtering locally")
		return s.filterLocally(ctx, filter), nil
	}

	invoices = withRefs(invoices, filterRefPrefix)

	s.mu.Lock()
	s.dropFilterRefs()
	s.upsert(invoices)
	s.visible = keysOf(invoices)
	s.filterRefs = refsOf(invoices)
	s.filter = filter
	s.fallback = false
	s.lastErr = nil
	s.mu.Unlock()

	return copyInvoices(invoices), nil
}

// FilterByNIT filters by NIT only. An empty NIT shows everything.
func (s *InvoiceStore) FilterByNIT(ctx context.Context, nit string) ([]domain.Invoice, error) {
	return s.FetchFiltered(ctx, domain.Filter{NIT: nit})
}

// ClearFilters drops the filter and reloads the full set
func (s *InvoiceStore) ClearFilters(ctx context.Context) ([]domain.Invoice, error) {
	return s.FetchAll(ctx)
}

// UpdateDate changes an invoice's issue date. On success the stored entry
// is patched in place, so the full and filtered views both show it.
// The returned invoice is nil when the id is not in the collection.
func (s *InvoiceStore) UpdateDate(ctx context.Context, id string, date time.Time) (*domain.Invoice, error) {
	done := s.begin()
	defer done()

	if err := s.api.UpdateInvoiceDate(ctx, id, date); err != nil {
		s.setErr(err)
		return nil, fmt.Errorf("update invoice date: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil

	key, ok := s.keyForID(id)
	if !ok {
		s.log.Debug().Str("id", id).Msg("updated invoice not in collection")
		return nil, nil
	}
	inv := s.byKey[key]
	inv.Date = date
	s.byKey[key] = inv

	s.log.Info().Str("id", id).Str("fecha", domain.DayString(date)).Msg("invoice date updated")
	return &inv, nil
}

// Get fetches a single invoice from the backend
func (s *InvoiceStore) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	done := s.begin()
	defer done()

	inv, err := s.api.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", id, err)
	}
	return &inv, nil
}

// State returns a copy of the visible set and its metadata
func (s *InvoiceStore) State() InvoiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visible := s.resolve(s.visible)
	return InvoiceState{
		Invoices:  visible,
		Total:     domain.SumAmounts(visible),
		Filter:    s.filter,
		FullCount: len(s.all),
		Loading:   s.inflight > 0,
		Fallback:  s.fallback,
		Err:       s.lastErr,
	}
}

// All returns the last full set
func (s *InvoiceStore) All() []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(s.all)
}

// Find looks up an invoice by key or backend id
func (s *InvoiceStore) Find(id string) (domain.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keyForID(id)
	if !ok {
		return domain.Invoice{}, false
	}
	return s.byKey[key], true
}

// Loading reports whether any request is outstanding
func (s *InvoiceStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// LastCreated returns the most recently created invoice, if any
func (s *InvoiceStore) LastCreated() *domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastCreated == nil {
		return nil
	}
	inv := *s.lastCreated
	return &inv
}

func (s *InvoiceStore) filterLocally(ctx context.Context, filter domain.Filter) []domain.Invoice {
	s.mu.RLock()
	haveFull := s.haveFull
	s.mu.RUnlock()

	if !haveFull {
		s.loadSnapshot(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropFilterRefs()
	matched := filter.Apply(s.resolve(s.all))
	s.visible = keysOf(matched)
	s.filter = filter
	s.fallback = true
	return matched
}

// loadSnapshot adopts the offline snapshot as the full set
func (s *InvoiceStore) loadSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	invoices, err := s.snapshot.LoadInvoices(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load invoice snapshot")
		return
	}
	invoices = withRefs(invoices, fullRefPrefix)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haveFull {
		return
	}
	s.replaceAll(invoices)
	s.log.Info().Int("count", len(invoices)).Msg("using cached invoices")
}

func (s *InvoiceStore) saveSnapshot(ctx context.Context, invoices []domain.Invoice) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.SaveInvoices(ctx, invoices); err != nil {
		s.log.Warn().Err(err).Msg("failed to save invoice snapshot")
	}
}

// replaceAll must be called with mu held
func (s *InvoiceStore) replaceAll(invoices []domain.Invoice) {
	s.byKey = make(map[string]domain.Invoice, len(invoices))
	s.filterRefs = nil
	s.upsert(invoices)
	s.all = keysOf(invoices)
	s.visible = s.all
	s.haveFull = true
	s.filter = domain.Filter{}
	s.fallback = false
	s.lastErr = nil
}

func (s *InvoiceStore) upsert(invoices []domain.Invoice) {
	for _, inv := range invoices {
		s.byKey[inv.Key()] = inv
	}
}

// dropFilterRefs forgets id-less invoices that only the previous backend
// filter returned. Must be called with mu held.
func (s *InvoiceStore) dropFilterRefs() {
	for _, k := range s.filterRefs {
		delete(s.byKey, k)
	}
	s.filterRefs = nil
}

func (s *InvoiceStore) resolve(keys []string) []domain.Invoice {
	out := make([]domain.Invoice, 0, len(keys))
	for _, k := range keys {
		if inv, ok := s.byKey[k]; ok {
			out = append(out, inv)
		}
	}
	return out
}

func (s *InvoiceStore) keyForID(id string) (string, bool) {
	if _, ok := s.byKey[id]; ok {
		return id, true
	}
	for k, inv := range s.byKey {
		if inv.ID == id {
			return k, true
		}
	}
	return "", false
}

func (s *InvoiceStore) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func keysOf(invoices []domain.Invoice) []string {
	keys := make([]string, len(invoices))
	for i, inv := range invoices {
		keys[i] = inv.Key()
	}
	return keys
}

const (
	fullRefPrefix   = "row-"
	filterRefPrefix = "match-"
)

// withRefs gives every invoice without a backend id a positional Ref so
// that two such invoices never share a key
func withRefs(invoices []domain.Invoice, prefix string) []domain.Invoice {
	out := make([]domain.Invoice, len(invoices))
	for i, inv := range invoices {
		if inv.ID == "" {
			inv.Ref = prefix + strconv.Itoa(i)
		} else {
			inv.Ref = ""
		}
		out[i] = inv
	}
	return out
}

func refsOf(invoices []domain.Invoice) []string {
	var refs []string
	for _, inv := range invoices {
		if inv.ID == "" {
			refs = append(refs, inv.Ref)
		}
	}
	return refs
}

func copyInvoices(invoices []domain.Invoice) []domain.Invoice {
	out := make([]domain.Invoice, len(invoices))
	copy(out, invoices)
	return out
}
