// Package dashboard assembles report payloads from the reporting engine,
// the greeting and the quote providers.
//
// Assembly never fails: a section that cannot be produced is logged and
// replaced by its empty value, so one unavailable sub-report never hides
// the others.
package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/greeting"
	"github.com/rumor-ml/commons.systems/findash/internal/quotes"
	"github.com/rumor-ml/commons.systems/findash/internal/report"
	"github.com/rumor-ml/commons.systems/findash/internal/settings"
)

// Report is the main dashboard payload.
type Report struct {
	Greeting        string                     `json:"greeting"`
	Cards           []domain.CardSummary       `json:"cards"`
	TopTransactions []domain.RankedTransaction `json:"top_transactions"`
	CurrencyRates   []domain.CurrencyRate      `json:"currency_rates"`
	StockPrices     []domain.StockPrice        `json:"stock_prices"`
}

// SpendingReport is the payload of the category spending view.
type SpendingReport struct {
	Category string                        `json:"category"`
	AsOf     string                        `json:"as_of,omitempty"`
	Months   []domain.MonthlyCategorySpend `json:"months"`
}

// CashbackReport is the payload of the monthly cashback view.
type CashbackReport struct {
	Year       int                      `json:"year"`
	Month      int                      `json:"month"`
	Total      decimal.Decimal          `json:"total"`
	Categories domain.CashbackBreakdown `json:"categories"`
}

// Request selects what the dashboard covers.
type Request struct {
	// Date is the reference date of the window filter, e.g. "20.05.2020".
	Date string
	// Settings picks the quoted currencies and stocks.
	Settings settings.Settings
}

// Assembler builds dashboard payloads.
type Assembler struct {
	engine *report.Engine
	rates  quotes.RateProvider
	prices quotes.PriceProvider
	log    zerolog.Logger
	now    func() time.Time
	topN   int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the wall clock used for the greeting.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithTopN changes how many transactions the top list holds.
func WithTopN(n int) Option {
	return func(a *Assembler) {
		a.topN = n
	}
}

// New creates an Assembler. Nil providers yield empty quote sections.
func New(engine *report.Engine, rates quotes.RateProvider, prices quotes.PriceProvider, log zerolog.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		engine: engine,
		rates:  rates,
		prices: prices,
		log:    log.With().Str("component", "dashboard").Logger(),
		now:    time.Now,
		topN:   report.DefaultTopN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build assembles the main dashboard for ds. The transaction sections and
// both quote providers run concurrently.
func (a *Assembler) Build(ctx context.Context, ds *domain.Dataset, req Request) *Report {
	r := &Report{
		Greeting:        greeting.At(a.now()),
		Cards:           []domain.CardSummary{},
		TopTransactions: []domain.RankedTransaction{},
		CurrencyRates:   []domain.CurrencyRate{},
		StockPrices:     []domain.StockPrice{},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.transactions(ds, req.Date, r)
		return nil
	})
	if a.rates != nil {
		g.Go(func() error {
			if rates := a.rates.Rates(ctx, req.Settings.UserCurrencies); rates != nil {
				r.CurrencyRates = rates
			}
			return nil
		})
	}
	if a.prices != nil {
		g.Go(func() error {
			if prices := a.prices.Prices(ctx, req.Settings.UserStocks); prices != nil {
				r.StockPrices = prices
			}
			return nil
		})
	}
	_ = g.Wait()

	a.log.Info().
		Str("date", req.Date).
		Int("cards", len(r.Cards)).
		Int("top", len(r.TopTransactions)).
		Int("rates", len(r.CurrencyRates)).
		Int("prices", len(r.StockPrices)).
		Msg("Dashboard assembled")
	return r
}

// transactions fills the card and top sections from the date window.
func (a *Assembler) transactions(ds *domain.Dataset, date string, r *Report) {
	window, err := a.engine.FilterByDate(ds, date)
	if err != nil {
		a.log.Error().Err(err).Str("date", date).Msg("Date window unavailable; card and top sections left empty")
		return
	}

	if cards, err := a.engine.CardSummaries(window); err != nil {
		a.log.Error().Err(err).Msg("Card summaries unavailable")
	} else {
		r.Cards = cards
	}

	if top, err := a.engine.TopTransactions(window, a.topN); err != nil {
		a.log.Error().Err(err).Msg("Top transactions unavailable")
	} else {
		r.TopTransactions = top
	}
}

// Spending builds the category spending view. asOf may be empty for today.
func (a *Assembler) Spending(ds *domain.Dataset, category, asOf string) *SpendingReport {
	r := &SpendingReport{Category: category, AsOf: asOf, Months: []domain.MonthlyCategorySpend{}}
	months, err := a.engine.SpendingByCategory(ds, category, asOf)
	if err != nil {
		a.log.Error().Err(err).Str("category", category).Msg("Spending report unavailable")
		return r
	}
	r.Months = months
	return r
}

// Cashback builds the monthly cashback view.
func (a *Assembler) Cashback(ds *domain.Dataset, year, month int) *CashbackReport {
	categories := a.engine.CashbackByCategory(ds, year, month)
	return &CashbackReport{
		Year:       year,
		Month:      month,
		Total:      categories.Total().Round(2),
		Categories: categories,
	}
}
