package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// mock implementations
type mockInvoiceAPI struct {
	invoices  []domain.Invoice
	listErr   error // Returned for unfiltered lists
	filterErr error // Returned for filtered lists
	updateErr error
	calls     []domain.Filter
	patched   map[string]time.Time
	created   []domain.InvoiceInput
	started   chan struct{}
	release   chan struct{}
}

func (m *mockInvoiceAPI) CreateInvoice(ctx context.Context, in domain.InvoiceInput) (domain.Invoice, error) {
	m.created = append(m.created, in)
	return domain.Invoice{ID: "new", NIT: in.NIT, Amount: in.Amount, Date: in.Date}, nil
}
func (m *mockInvoiceAPI) ListInvoices(ctx context.Context, filter domain.Filter) ([]domain.Invoice, error) {
	m.calls = append(m.calls, filter)
	if m.started != nil {
		m.started <- struct{}{}
		<-m.release
	}
	if filter.IsEmpty() {
		if m.listErr != nil {
			return nil, m.listErr
		}
		out := make([]domain.Invoice, len(m.invoices))
		copy(out, m.invoices)
		return out, nil
	}
	if m.filterErr != nil {
		return nil, m.filterErr
	}
	return filter.Apply(m.invoices), nil
}
func (m *mockInvoiceAPI) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return domain.Invoice{}, errors.New("not found")
}
func (m *mockInvoiceAPI) UpdateInvoiceDate(ctx context.Context, id string, date time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.patched == nil {
		m.patched = make(map[string]time.Time)
	}
	m.patched[id] = date
	return nil
}

type mockInvoiceSnapshot struct {
	saved []domain.Invoice
}

func (m *mockInvoiceSnapshot) SaveInvoices(ctx context.Context, invoices []domain.Invoice) error {
	m.saved = invoices
	return nil
}
func (m *mockInvoiceSnapshot) LoadInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return m.saved, nil
}

func sampleInvoices() []domain.Invoice {
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return []domain.Invoice{
		{ID: "f1", NIT: "123", ClientName: "Ana", Date: day, Number: "1", Amount: decimal.NewFromInt(100)},
		{ID: "f2", NIT: "456", ClientName: "Beto", Date: day, Number: "2", Amount: decimal.NewFromInt(50)},
	}
}

func newTestInvoiceStore(api *mockInvoiceAPI) *InvoiceStore {
	return NewInvoiceStore(api, nil, zerolog.Nop())
}

func TestFetchAll_ComputesTotal(t *testing.T) {
	ctx := context.Background()
	store := newTestInvoiceStore(&mockInvoiceAPI{invoices: sampleInvoices()})

	got, err := store.FetchAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(got))
	}

	state := store.State()
	if !state.Total.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected total 150, got %s", state.Total)
	}
	if !state.Filter.IsEmpty() || state.Fallback {
		t.Fatalf("unexpected state after full fetch: %+v", state)
	}
}

func TestFetchAll_ErrorKeepsPreviousSet(t *testing.T) {
	ctx := context.Background()
	api := &mockInvoiceAPI{invoices: sampleInvoices()}
	store := newTestInvoiceStore(api)

	if _, err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	api.listErr = errors.New("boom")
	if _, err := store.FetchAll(ctx); err == nil {
		t.Fatal("expected error")
	}

	state := store.State()
	if len(state.Invoices) != 2 || state.Err == nil {
		t.Fatalf("expected previous set and an error, got %+v", state)
	}
	if store.Loading() {
		t.Fatal("loading should be cleared after failure")
	}
}

func TestFilterByNIT_UsesBackend(t *testing.T) {
	ctx := context.Background()
	api := &mockInvoiceAPI{invoices: sampleInvoices()}
	store := newTestInvoiceStore(api)

	got, err := store.FilterByNIT(ctx, " 123 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].NIT != "123" {
		t.Fatalf("expected only NIT 123, got %+v", got)
	}
	if api.calls[0].NIT != "123" {
		t.Fatalf("expected trimmed NIT sent to backend, got %q", api.calls[0].NIT)
	}

	state := store.State()
	if !state.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total 100, got %s", state.Total)
	}
	if state.Fallback {
		t.Fatal("backend result should not be marked as fallback")
	}
}

func TestFetchFiltered_EmptyFilterFetchesAll(t *testing.T) {
	ctx := context.Background()
	api := &mockInvoiceAPI{invoices: sampleInvoices()}
	store := newTestInvoiceStore(api)

	if _, err := store.FetchFiltered(ctx, domain.Filter{NIT: "   ", Date: " "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.FilterByNIT(ctx, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, call := range api.calls {
		if !call.IsEmpty() {
			t.Fatalf("expected unfiltered requests only, got %+v", api.calls)
		}
	}
	if got := len(store.State().Invoices); got != 2 {
		t.Fatalf("expected full set, got %d", got)
	}
}

func TestFetchFiltered_FallsBackToLocalFilter(t *testing.T) {
	ctx := context.Background()
	invoices := append(sampleInvoices(), domain.Invoice{ID: "f3", NIT: "91234", Amount: decimal.NewFromInt(7)})
	api := &mockInvoiceAPI{invoices: invoices}
	store := newTestInvoiceStore(api)

	if _, err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	api.filterErr = errors.New("backend down")
	got, err := store.FilterByNIT(ctx, "123")
	if err != nil {
		t.Fatalf("fallback should not return an error, got %v", err)
	}
	if len(got) != 2 || got[0].ID != "f1" || got[1].ID != "f3" {
		t.Fatalf("expected substring matches f1 and f3, got %+v", got)
	}

	state := store.State()
	if !state.Fallback {
		t.Fatal("expected fallback flag")
	}
	if !state.Total.Equal(decimal.NewFromInt(107)) {
		t.Fatalf("expected total 107, got %s", state.Total)
	}
	if state.FullCount != 3 {
		t.Fatalf("full set should be untouched, got %d", state.FullCount)
	}
}

func TestFetchFiltered_FallbackUsesSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshot := &mockInvoiceSnapshot{saved: sampleInvoices()}
	api := &mockInvoiceAPI{filterErr: errors.New("offline")}
	store := NewInvoiceStore(api, snapshot, zerolog.Nop())

	got, err := store.FetchFiltered(ctx, domain.Filter{Date: "2025-03-10", NIT: "456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "f2" {
		t.Fatalf("expected f2 from snapshot, got %+v", got)
	}
}

func idlessInvoices() []domain.Invoice {
	return []domain.Invoice{
		{NIT: "123", ClientName: "Ana", Amount: decimal.NewFromInt(100)},
		{NIT: "123", ClientName: "Ana", Amount: decimal.NewFromInt(50)},
		{ID: "f9", NIT: "999", Amount: decimal.NewFromInt(5)},
	}
}

func TestFetchAll_KeepsInvoicesWithoutID(t *testing.T) {
	ctx := context.Background()
	store := newTestInvoiceStore(&mockInvoiceAPI{invoices: idlessInvoices()})

	got, err := store.FetchAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Key() == got[1].Key() {
		t.Fatalf("invoices without id share key %q", got[0].Key())
	}

	state := store.State()
	if len(state.Invoices) != 3 {
		t.Fatalf("expected 3 invoices, got %d", len(state.Invoices))
	}
	if !state.Invoices[0].Amount.Equal(decimal.NewFromInt(100)) || !state.Invoices[1].Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected amounts 100 and 50, got %s and %s", state.Invoices[0].Amount, state.Invoices[1].Amount)
	}
	if !state.Total.Equal(decimal.NewFromInt(155)) {
		t.Fatalf("expected total 155, got %s", state.Total)
	}
	if len(store.All()) != 3 {
		t.Fatalf("expected full set of 3, got %d", len(store.All()))
	}
}

func TestFilterByNIT_KeepsInvoicesWithoutID(t *testing.T) {
	ctx := context.Background()
	store := newTestInvoiceStore(&mockInvoiceAPI{invoices: idlessInvoices()})

	if _, err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := store.FilterByNIT(ctx, "123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(got))
		}
	}

	state := store.State()
	if !state.Total.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected filtered total 150, got %s", state.Total)
	}
	if len(store.All()) != 3 || !domain.SumAmounts(store.All()).Equal(decimal.NewFromInt(155)) {
		t.Fatalf("full set changed by filter: %+v", store.All())
	}

	if _, err := store.ClearFilters(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(store.State().Invoices); got != 3 {
		t.Fatalf("expected 3 invoices after clearing, got %d", got)
	}
}

func TestFetchAll_SavesSnapshot(t *testing.T) {
	snapshot := &mockInvoiceSnapshot{}
	store := NewInvoiceStore(&mockInvoiceAPI{invoices: sampleInvoices()}, snapshot, zerolog.Nop())

	if _, err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.saved) != 2 {
		t.Fatalf("expected snapshot of 2 invoices, got %d", len(snapshot.saved))
	}
}

func TestUpdateDate_PatchesFullAndFilteredViews(t *testing.T) {
	ctx := context.Background()
	api := &mockInvoiceAPI{invoices: sampleInvoices()}
	store := newTestInvoiceStore(api)

	if _, err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.FilterByNIT(ctx, "123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newDate := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	updated, err := store.UpdateDate(ctx, "f1", newDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil || !updated.Date.Equal(newDate) {
		t.Fatalf("expected updated invoice, got %+v", updated)
	}
	if !api.patched["f1"].Equal(newDate) {
		t.Fatalf("expected PATCH with new date, got %v", api.patched["f1"])
	}

	visible := store.State().Invoices
	if len(visible) != 1 || !visible[0].Date.Equal(newDate) {
		t.Fatalf("filtered view not updated: %+v", visible)
	}

	for _, inv := range store.All() {
		switch inv.ID {
		case "f1":
			if !inv.Date.Equal(newDate) {
				t.Fatalf("full view not updated: %v", inv.Date)
			}
		default:
			if inv.Date.Equal(newDate) {
				t.Fatalf("invoice %s should be untouched", inv.ID)
			}
		}
	}
}

func TestUpdateDate_FailureLeavesDate(t *testing.T) {
	ctx := context.Background()
	api := &mockInvoiceAPI{invoices: sampleInvoices(), updateErr: errors.New("rejected")}
	store := newTestInvoiceStore(api)

	if _, err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.UpdateDate(ctx, "f1", time.Now()); err == nil {
		t.Fatal("expected error")
	}

	inv, ok := store.Find("f1")
	if !ok || !inv.Date.Equal(sampleInvoices()[0].Date) {
		t.Fatalf("date should be unchanged, got %+v", inv)
	}
	if store.State().Err == nil {
		t.Fatal("expected error recorded in state")
	}
}

func TestCreate_RecordsLastCreated(t *testing.T) {
	api := &mockInvoiceAPI{}
	store := newTestInvoiceStore(api)

	in := domain.InvoiceInput{NIT: "123", Amount: decimal.NewFromInt(10)}
	inv, err := store.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.ID != "new" {
		t.Fatalf("unexpected invoice %+v", inv)
	}
	if last := store.LastCreated(); last == nil || last.ID != "new" {
		t.Fatalf("expected LastCreated to be set, got %+v", last)
	}
	if len(store.All()) != 0 {
		t.Fatal("create should not modify the collection")
	}
}

func TestLoading_TrueWhileRequestInFlight(t *testing.T) {
	api := &mockInvoiceAPI{
		invoices: sampleInvoices(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	store := newTestInvoiceStore(api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.FetchAll(context.Background())
	}()

	<-api.started
	if !store.Loading() || !store.State().Loading {
		t.Fatal("expected loading while request is outstanding")
	}
	close(api.release)
	<-done

	if store.Loading() {
		t.Fatal("expected loading cleared after request")
	}
}
