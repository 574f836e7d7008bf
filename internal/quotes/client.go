// Package quotes fetches currency exchange rates and stock prices for the
// dashboard. Providers never fail the caller: symbols that cannot be
// resolved are left out of the result and the cause is logged.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
)

// DefaultTimeout bounds each provider request.
const DefaultTimeout = 10 * time.Second

// RateProvider returns exchange rates for currency codes.
type RateProvider interface {
	Rates(ctx context.Context, currencies []string) []domain.CurrencyRate
}

// PriceProvider returns latest prices for stock symbols.
type PriceProvider interface {
	Prices(ctx context.Context, symbols []string) []domain.StockPrice
}

// Option configures a provider client
type Option func(*options)

type options struct {
	client  *http.Client
	timeout time.Duration
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithBaseURL sets a custom endpoint (useful for testing)
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithAPIKey sets the key sent to providers that need one
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithLogger sets the logger for lookup failures
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func newOptions(baseURL, component string, opts []Option) options {
	o := options{
		timeout: DefaultTimeout,
		baseURL: baseURL,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{}
	}
	// Ensure client has timeout set
	if o.client.Timeout == 0 {
		o.client.Timeout = o.timeout
	}
	o.log = o.log.With().Str("component", component).Logger()
	return o
}

// getJSON issues a GET to base with query params and decodes the body into v.
func (o options) getJSON(ctx context.Context, query url.Values, v any) error {
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return fmt.Errorf("invalid provider URL %q: %w", o.baseURL, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
