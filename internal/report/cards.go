package report

import (
	"fmt"
	"sort"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CardSummaries groups expense rows by card number.
//
// Only rows with a negative amount count. TotalSpent is the rounded sum of
// absolute amounts and Cashback is one whole unit per full 100 spent.
// Results are ordered by card number.
func (e *Engine) CardSummaries(ds *domain.Dataset) ([]domain.CardSummary, error) {
	if err := ds.Require(domain.ColumnCardNumber, domain.ColumnAmount); err != nil {
		return nil, fmt.Errorf("card summaries: %w", err)
	}

	totals := make(map[string]decimal.Decimal)
	for _, t := range ds.Rows() {
		if !t.IsExpense() || t.CardNumber == nil {
			continue
		}
		totals[*t.CardNumber] = totals[*t.CardNumber].Add(t.Amount.Abs())
	}

	cards := make([]string, 0, len(totals))
	for card := range totals {
		cards = append(cards, card)
	}
	sort.Strings(cards)

	summaries := make([]domain.CardSummary, 0, len(cards))
	for _, card := range cards {
		spent := totals[card].Round(2)
		summaries = append(summaries, domain.CardSummary{
			LastDigits: LastDigits(card),
			TotalSpent: spent,
			Cashback:   spent.Div(hundred).Floor(),
		})
	}

	if len(summaries) == 0 {
		e.log.Warn().Int("rows", ds.Len()).Msg("No card expenses found")
	} else {
		e.log.Info().Int("cards", len(summaries)).Msg("Aggregated card expenses")
	}
	return summaries, nil
}

// LastDigits returns the last 4 characters of a card number.
// If the card number has fewer than 4 characters, returns it unchanged.
// Examples: "*7197" → "7197", "123" → "123", "" → ""
func LastDigits(cardNumber string) string {
	r := []rune(cardNumber)
	if len(r) <= 4 {
		return cardNumber
	}
	return string(r[len(r)-4:])
}
