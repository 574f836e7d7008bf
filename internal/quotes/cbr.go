package quotes

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
)

// DefaultCBRURL is the Central Bank of Russia daily rates feed.
const DefaultCBRURL = "https://www.cbr-xml-daily.ru/daily_json.js"

type cbrDaily struct {
	Valute map[string]struct {
		CharCode string          `json:"CharCode"`
		Nominal  int             `json:"Nominal"`
		Value    decimal.Decimal `json:"Value"`
	} `json:"Valute"`
}

// CBRClient reads ruble exchange rates from the CBR daily JSON feed.
type CBRClient struct {
	opts options
}

// NewCBRClient creates a CBR rate provider
func NewCBRClient(opts ...Option) *CBRClient {
	return &CBRClient{opts: newOptions(DefaultCBRURL, "cbr", opts)}
}

// Rates returns the ruble rate of each requested currency in request
// order. The feed is fetched once per call. Rates are quoted per the
// feed's nominal unit, as published.
func (c *CBRClient) Rates(ctx context.Context, currencies []string) []domain.CurrencyRate {
	rates := []domain.CurrencyRate{}
	if len(currencies) == 0 {
		return rates
	}

	var daily cbrDaily
	if err := c.opts.getJSON(ctx, nil, &daily); err != nil {
		c.opts.log.Error().Err(err).Strs("currencies", currencies).Msg("Failed to fetch currency rates")
		return rates
	}

	for _, code := range currencies {
		v, ok := daily.Valute[strings.ToUpper(code)]
		if !ok {
			c.opts.log.Warn().Str("currency", code).Msg("Currency not in daily feed")
			continue
		}
		rates = append(rates, domain.CurrencyRate{Currency: code, Rate: v.Value})
	}
	return rates
}
