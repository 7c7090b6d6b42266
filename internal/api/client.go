package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Backend routes
const (
	pathInvoices        = "/facturas/"
	pathInvoicesList    = "/facturas/detailed"
	pathInvoice         = "/facturas/{id}"
	pathInvoiceDate     = "/facturas/{id}/fecha"
	pathPayments        = "/pagos/"
	defaultNITParam     = "NIT"
	dateParam           = "fecha"
	defaultRequestLimit = 15 * time.Second
)

// Options configures a Client
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	NITParam string // query parameter used for NIT filtering
	Token    string // optional bearer token
	Logger   zerolog.Logger
}

// Client talks to the facturas/pagos REST backend. It owns the base URL,
// default headers, credentials and request logging for every call.
type Client struct {
	http     *resty.Client
	nitParam string
	log      zerolog.Logger
}

// New creates a Client. resty keeps a cookie jar per client, so session
// cookies set by the backend are sent back on later calls.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestLimit
	}
	nitParam := opts.NITParam
	if nitParam == "" {
		nitParam = defaultNITParam
	}

	c := &Client{
		nitParam: nitParam,
		log:      opts.Logger,
	}

	r := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetLogger(restyLogger{log: opts.Logger}).
		SetHeaders(map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		})
	if opts.Token != "" {
		r.SetAuthToken(opts.Token)
	}

	r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		c.log.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("request")
		return nil
	})
	r.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		ev := c.log.Debug()
		if resp.IsError() {
			ev = c.log.Warn().Str("body", truncate(string(resp.Body()), 512))
		}
		ev.Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Msg("response")
		return nil
	})
	r.OnError(func(req *resty.Request, err error) {
		c.log.Error().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("request failed")
	})

	c.http = r
	return c
}

// BaseURL returns the configured backend origin
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// CreateInvoice posts a new invoice and returns what the backend stored
func (c *Client) CreateInvoice(ctx context.Context, in domain.InvoiceInput) (domain.Invoice, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(newInvoicePayload(in)).
		Post(pathInvoices)
	if err := checkResponse(resp, err); err != nil {
		return domain.Invoice{}, err
	}
	return decodeInvoice(unwrapOne(resp.Body()))
}

// ListInvoices fetches /facturas/detailed. Empty filter criteria are not sent.
func (c *Client) ListInvoices(ctx context.Context, filter domain.Filter) ([]domain.Invoice, error) {
	f := filter.Trimmed()
	params := map[string]string{}
	if f.NIT != "" {
		params[c.nitParam] = f.NIT
	}
	if f.Date != "" {
		params[dateParam] = f.Date
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(pathInvoicesList)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	items, ok := unwrapList(resp.Body())
	if !ok {
		c.log.Warn().Str("path", pathInvoicesList).Msg("unrecognized response envelope, treating as empty")
		return []domain.Invoice{}, nil
	}
	return c.decodeInvoices(items), nil
}

// GetInvoice fetches a single invoice
func (c *Client) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get(pathInvoice)
	if err := checkResponse(resp, err); err != nil {
		return domain.Invoice{}, err
	}
	return decodeInvoice(unwrapOne(resp.Body()))
}

// UpdateInvoiceDate patches the issue date of one invoice
func (c *Client) UpdateInvoiceDate(ctx context.Context, id string, date time.Time) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(datePayload{Date: domain.FormatISO(date)}).
		Patch(pathInvoiceDate)
	return checkResponse(resp, err)
}

// ListPayments fetches every payment
func (c *Client) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(pathPayments)
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	items, ok := unwrapList(resp.Body())
	if !ok {
		c.log.Warn().Str("path", pathPayments).Msg("unrecognized response envelope, treating as empty")
		return []domain.Payment{}, nil
	}
	return c.decodePayments(items), nil
}

// CreatePayment registers a payment
func (c *Client) CreatePayment(ctx context.Context, in domain.PaymentInput) (domain.Payment, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(newPaymentPayload(in)).
		Post(pathPayments)
	if err := checkResponse(resp, err); err != nil {
		return domain.Payment{}, err
	}
	return decodePayment(unwrapOne(resp.Body()))
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	if resp.IsError() {
		return newError(resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Body())
	}
	return nil
}

// restyLogger routes resty's own diagnostics through zerolog
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
