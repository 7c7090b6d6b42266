package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...func(*Options)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	o := Options{BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o)
}

func TestListInvoices_Envelopes(t *testing.T) {
	item := `{"_id":"f1","NIT":"123","nombreCliente":"Ana","fecha":"2025-03-10T12:00:00.000Z","serie":"A","numeroFactura":1,"monto":100}`
	bodies := map[string]string{
		"bare array":  `[` + item + `]`,
		"data":        `{"data":[` + item + `]}`,
		"facturas":    `{"facturas":[` + item + `]}`,
		"result":      `{"result":[` + item + `]}`,
		"nested data": `{"data":{"data":[` + item + `]}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/facturas/detailed", r.URL.Path)
				_, _ = io.WriteString(w, body)
			})

			got, err := c.ListInvoices(context.Background(), domain.Filter{})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "f1", got[0].ID)
			assert.Equal(t, "1", got[0].Number)
			assert.Equal(t, "2025-03-10", domain.DayString(got[0].Date))
			assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(100)))
		})
	}
}

func TestListInvoices_UnrecognizedEnvelopeIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"_id":"x"}]}`)
	})

	got, err := c.ListInvoices(context.Background(), domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestListInvoices_SkipsMalformedItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"a","monto":"12.50"}, 42, {"id":"b","monto":"oops"}]`)
	})

	got, err := c.ListInvoices(context.Background(), domain.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "b", got[1].ID)
	assert.True(t, got[1].Amount.IsZero())
}

func TestListInvoices_QueryParams(t *testing.T) {
	var query map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.ListInvoices(context.Background(), domain.Filter{NIT: " 123 ", Date: "2025-03-10"})
	require.NoError(t, err)
	assert.Equal(t, []string{"123"}, query["NIT"])
	assert.Equal(t, []string{"2025-03-10"}, query["fecha"])

	_, err = c.ListInvoices(context.Background(), domain.Filter{NIT: "  "})
	require.NoError(t, err)
	assert.NotContains(t, query, "NIT")
	assert.NotContains(t, query, "fecha")
}

func TestListInvoices_ConfigurableNITParam(t *testing.T) {
	var query map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = io.WriteString(w, `[]`)
	}, func(o *Options) { o.NITParam = "nit" })

	_, err := c.ListInvoices(context.Background(), domain.Filter{NIT: "999"})
	require.NoError(t, err)
	assert.Equal(t, []string{"999"}, query["nit"])
	assert.NotContains(t, query, "NIT")
}

func TestCreateInvoice_SendsPayloadAndHeaders(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/facturas/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"_id":"new1","NIT":"123","monto":1500.5}}`)
	}, func(o *Options) { o.Token = "secret" })

	inv, err := c.CreateInvoice(context.Background(), domain.InvoiceInput{
		NIT:        "123",
		ClientName: "Ana",
		Date:       time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC),
		Series:     "A",
		Number:     "0001",
		Amount:     decimal.RequireFromString("1500.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new1", inv.ID)

	assert.Equal(t, "123", got["NIT"])
	assert.Equal(t, "Ana", got["nombreCliente"])
	assert.Equal(t, "2025-04-02T12:00:00.000Z", got["fecha"])
	assert.Equal(t, "A", got["serie"])
	assert.Equal(t, "0001", got["numeroFactura"])
	assert.Equal(t, 1500.5, got["monto"])
}

func TestUpdateInvoiceDate_Patch(t *testing.T) {
	var body datePayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/facturas/f1/fecha", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	err := c.UpdateInvoiceDate(context.Background(), "f1", time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-30T12:00:00.000Z", body.Date)
}

func TestErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Factura no encontrada"}`)
	})

	_, err := c.GetInvoice(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Factura no encontrada")

	err = c.UpdateInvoiceDate(context.Background(), "missing", time.Now())
	assert.True(t, IsNotFound(err))
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Timeout: time.Second, Logger: zerolog.Nop()})
	_, err := c.ListInvoices(context.Background(), domain.Filter{})
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestPayments(t *testing.T) {
	var created map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pagos/", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"pagos":[
				{"facturaId":{"_id":"f1"},"fechaPago":"2025-05-01T12:00:00.000Z","boleta":"B1","montoPago":"50"},
				{"_id":"p2","facturaId":"f2","boleta":"B2","montoPago":75}
			]}`)
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			_, _ = io.WriteString(w, `{"facturaId":"f1","boleta":"B3","montoPago":10}`)
		}
	})

	list, err := c.ListPayments(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "0", list[0].ID)
	assert.Equal(t, "f1", list[0].InvoiceID)
	assert.Equal(t, "2025-05-01", domain.DayString(list[0].Date))
	assert.Equal(t, "p2", list[1].ID)
	assert.True(t, list[1].Date.IsZero())

	p, err := c.CreatePayment(context.Background(), domain.PaymentInput{
		InvoiceID: "f1",
		Date:      time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC),
		Receipt:   "B3",
		Amount:    decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "B3", p.Receipt)
	assert.Equal(t, "f1", created["facturaId"])
	assert.Equal(t, "2025-05-02T12:00:00.000Z", created["fechaPago"])
	assert.Equal(t, "B3", created["boleta"])
	assert.Equal(t, float64(10), created["montoPago"])
}
