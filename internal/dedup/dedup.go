// Package dedup merges ledger datasets and drops rows repeated across
// overlapping exports via SHA256 fingerprinting.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
)

// Stats summarizes a merge.
type Stats struct {
	Files      int
	Rows       int // rows kept
	Duplicates int // rows dropped as already seen in an earlier file
}

// GenerateFingerprint creates a SHA256 hash of the identifying fields of a row.
// Format: SHA256("{payment}|{operation}|{card}|{amount}|{normalizedDescription}")
// Amount is formatted with 2 decimal places for consistency.
// Description is normalized: lowercase and trimmed. Absent fields hash as empty.
func GenerateFingerprint(t domain.Transaction) string {
	amount := ""
	if t.Amount != nil {
		amount = t.Amount.StringFixed(2)
	}

	input := fmt.Sprintf("%s|%s|%s|%s|%s",
		value(t.PaymentDate),
		value(t.OperationDate),
		value(t.CardNumber),
		amount,
		strings.ToLower(strings.TrimSpace(value(t.Description))),
	)

	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// Merge concatenates datasets in order. The column set is the union of the
// inputs in first-seen order.
//
// A row is dropped when an earlier dataset already holds at least as many
// rows with the same fingerprint. Repeats inside a single dataset are real
// repeated purchases and are always kept.
func Merge(datasets ...*domain.Dataset) (*domain.Dataset, Stats) {
	stats := Stats{Files: len(datasets)}

	var columns []domain.Column
	var rows []domain.Transaction
	seen := make(map[domain.Column]bool)
	kept := make(map[string]int)

	for _, ds := range datasets {
		for _, c := range ds.Columns() {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}

		local := make(map[string]int)
		for _, t := range ds.Rows() {
			fp := GenerateFingerprint(t)
			local[fp]++
			if local[fp] <= kept[fp] {
				stats.Duplicates++
				continue
			}
			rows = append(rows, t)
		}
		for fp, n := range local {
			if n > kept[fp] {
				kept[fp] = n
			}
		}
	}

	stats.Rows = len(rows)
	return domain.NewDataset(columns, rows), stats
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
