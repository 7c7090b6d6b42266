package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/facturas/internal/domain"
	"github.com/shopspring/decimal"
)

// Envelope keys seen across backend revisions, in lookup order
var listKeys = []string{"data", "facturas", "pagos", "result"}

// unwrapList normalizes a list response into its items. The backend has
// answered with a bare array and with arrays under several keys, sometimes
// nested one level (data.data). ok is false for any other shape.
func unwrapList(body []byte) (items []json.RawMessage, ok bool) {
	return unwrapListDepth(body, 2)
}

func unwrapListDepth(body []byte, depth int) ([]json.RawMessage, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, false
		}
		return items, true
	case '{':
		if depth == 0 {
			return nil, false
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, false
		}
		for _, key := range listKeys {
			if v, found := obj[key]; found {
				if items, ok := unwrapListDepth(v, depth-1); ok {
					return items, true
				}
			}
		}
	}
	return nil, false
}

// unwrapOne strips a single-entity envelope ({"data": {...}}) if present
func unwrapOne(body []byte) []byte {
	body = bytes.TrimSpace(body)
	for i := 0; i < 2; i++ {
		if len(body) == 0 || body[0] != '{' {
			return body
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return body
		}
		inner, found := obj["data"]
		if !found {
			inner, found = obj["result"]
		}
		inner = bytes.TrimSpace(inner)
		if !found || len(inner) == 0 || inner[0] != '{' {
			return body
		}
		body = inner
	}
	return body
}

// flexString accepts strings, numbers and populated references
// ({"_id": ...}) where the backend is inconsistent.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '{':
		var ref struct {
			ID    flexString `json:"_id"`
			AltID flexString `json:"id"`
		}
		if err := json.Unmarshal(b, &ref); err != nil {
			return err
		}
		*f = ref.ID
		if *f == "" {
			*f = ref.AltID
		}
	default:
		*f = flexString(string(b))
	}
	return nil
}

// flexAmount decodes numbers or numeric strings; anything else is zero
type flexAmount struct {
	decimal.Decimal
}

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

type invoiceWire struct {
	ID         flexString `json:"_id"`
	AltID      flexString `json:"id"`
	NIT        flexString `json:"NIT"`
	ClientName string     `json:"nombreCliente"`
	Date       string     `json:"fecha"`
	Series     flexString `json:"serie"`
	Number     flexString `json:"numeroFactura"`
	Amount     flexAmount `json:"monto"`
}

func (w invoiceWire) toDomain() domain.Invoice {
	id := string(w.ID)
	if id == "" {
		id = string(w.AltID)
	}
	return domain.Invoice{
		ID:         id,
		NIT:        string(w.NIT),
		ClientName: w.ClientName,
		Date:       domain.ParseTimestamp(w.Date),
		Series:     string(w.Series),
		Number:     string(w.Number),
		Amount:     w.Amount.Decimal,
	}
}

type paymentWire struct {
	ID        flexString `json:"_id"`
	AltID     flexString `json:"id"`
	InvoiceID flexString `json:"facturaId"`
	Date      string     `json:"fechaPago"`
	Receipt   string     `json:"boleta"`
	Amount    flexAmount `json:"montoPago"`
}

func (w paymentWire) toDomain() domain.Payment {
	id := string(w.ID)
	if id == "" {
		id = string(w.AltID)
	}
	return domain.Payment{
		ID:        id,
		InvoiceID: string(w.InvoiceID),
		Date:      domain.ParseTimestamp(w.Date),
		Receipt:   w.Receipt,
		Amount:    w.Amount.Decimal,
	}
}

func decodeInvoice(b []byte) (domain.Invoice, error) {
	var w invoiceWire
	if err := json.Unmarshal(b, &w); err != nil {
		return domain.Invoice{}, fmt.Errorf("decode invoice: %w", err)
	}
	return w.toDomain(), nil
}

func decodePayment(b []byte) (domain.Payment, error) {
	var w paymentWire
	if err := json.Unmarshal(b, &w); err != nil {
		return domain.Payment{}, fmt.Errorf("decode payment: %w", err)
	}
	return w.toDomain(), nil
}

// decodeInvoices skips items that are not invoice objects
func (c *Client) decodeInvoices(items []json.RawMessage) []domain.Invoice {
	out := make([]domain.Invoice, 0, len(items))
	for i, item := range items {
		inv, err := decodeInvoice(item)
		if err != nil {
			c.log.Warn().Err(err).Int("index", i).Msg("skipping malformed invoice")
			continue
		}
		out = append(out, inv)
	}
	return out
}

// decodePayments skips malformed items. Payments without a backend id are
// identified by their position in the response.
func (c *Client) decodePayments(items []json.RawMessage) []domain.Payment {
	out := make([]domain.Payment, 0, len(items))
	for i, item := range items {
		p, err := decodePayment(item)
		if err != nil {
			c.log.Warn().Err(err).Int("index", i).Msg("skipping malformed payment")
			continue
		}
		if p.ID == "" {
			p.ID = strconv.Itoa(i)
		}
		out = append(out, p)
	}
	return out
}

type invoicePayload struct {
	NIT        string  `json:"NIT"`
	ClientName string  `json:"nombreCliente"`
	Date       string  `json:"fecha"`
	Series     string  `json:"serie"`
	Number     string  `json:"numeroFactura"`
	Amount     float64 `json:"monto"`
}

func newInvoicePayload(in domain.InvoiceInput) invoicePayload {
	return invoicePayload{
		NIT:        in.NIT,
		ClientName: in.ClientName,
		Date:       domain.FormatISO(in.Date),
		Series:     in.Series,
		Number:     in.Number,
		Amount:     in.Amount.InexactFloat64(),
	}
}

type paymentPayload struct {
	InvoiceID string  `json:"facturaId"`
	Date      string  `json:"fechaPago"`
	Receipt   string  `json:"boleta"`
	Amount    float64 `json:"montoPago"`
}

func newPaymentPayload(in domain.PaymentInput) paymentPayload {
	return paymentPayload{
		InvoiceID: in.InvoiceID,
		Date:      domain.FormatISO(in.Date),
		Receipt:   in.Receipt,
		Amount:    in.Amount.InexactFloat64(),
	}
}

type datePayload struct {
	Date string `json:"fecha"`
}
