package quotes

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
)

// DefaultAlphaVantageURL is the Alpha Vantage query endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

// maxConcurrentQuotes bounds in-flight GLOBAL_QUOTE requests.
const maxConcurrentQuotes = 4

type globalQuote struct {
	Quote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

// AlphaVantageClient reads latest stock prices from Alpha Vantage.
type AlphaVantageClient struct {
	opts options
}

// NewAlphaVantageClient creates an Alpha Vantage price provider
func NewAlphaVantageClient(opts ...Option) *AlphaVantageClient {
	return &AlphaVantageClient{opts: newOptions(DefaultAlphaVantageURL, "alphavantage", opts)}
}

// Prices returns the latest price of each symbol in request order.
// One request is made per symbol.
func (c *AlphaVantageClient) Prices(ctx context.Context, symbols []string) []domain.StockPrice {
	if len(symbols) == 0 {
		return []domain.StockPrice{}
	}

	found := make([]*domain.StockPrice, len(symbols))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQuotes)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			price, err := c.quote(ctx, symbol)
			if err != nil {
				c.opts.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to fetch stock price")
				return nil
			}
			found[i] = &domain.StockPrice{Stock: symbol, Price: price}
			return nil
		})
	}
	_ = g.Wait()

	prices := make([]domain.StockPrice, 0, len(symbols))
	for _, p := range found {
		if p != nil {
			prices = append(prices, *p)
		}
	}
	return prices
}

func (c *AlphaVantageClient) quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", symbol)
	query.Set("apikey", c.opts.apiKey)

	var resp globalQuote
	if err := c.opts.getJSON(ctx, query, &resp); err != nil {
		return decimal.Zero, err
	}
	if resp.Quote.Price == "" {
		// Rate limiting and unknown symbols both come back as 200 without a quote.
		if msg := strings.TrimSpace(resp.Note + resp.Information); msg != "" {
			return decimal.Zero, fmt.Errorf("no quote: %s", msg)
		}
		return decimal.Zero, fmt.Errorf("no quote for %s", symbol)
	}
	price, err := decimal.NewFromString(resp.Quote.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", resp.Quote.Price, err)
	}
	return price, nil
}
