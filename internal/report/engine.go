// Package report implements the transaction aggregation and time-window
// reporting operations behind the dashboard.
//
// Every operation reads a *domain.Dataset and returns a freshly derived
// result. Datasets are never modified, so an Engine may be shared between
// goroutines.
package report

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultTopN is the number of transactions returned by the dashboard's
// top list.
const DefaultTopN = 5

// spendLookbackDays is how far back SpendingByCategory reaches before
// flooring to the first of the month.
const spendLookbackDays = 90

// Engine runs the reporting operations.
type Engine struct {
	log zerolog.Logger
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used when no reference date is given.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine that reports diagnostics to log.
func New(log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		log: log.With().Str("component", "report").Logger(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
