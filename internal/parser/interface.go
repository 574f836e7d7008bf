package parser

import (
	"context"
	"io"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
)

// HeaderSize is the number of leading bytes handed to CanParse.
const HeaderSize = 512

// Parser is the strategy interface for all ledger file format parsers
type Parser interface {
	// Name returns parser identifier (e.g., "xlsx", "csv", "ofx")
	Name() string

	// CanParse checks if parser can handle this file
	// Returns true if this parser should be used for the file
	CanParse(path string, header []byte) bool

	// Parse reads the whole ledger into an in-memory dataset
	Parse(ctx context.Context, r io.Reader, meta *Metadata) (*domain.Dataset, error)
}
