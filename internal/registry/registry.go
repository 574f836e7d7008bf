// Package registry selects a parser for a ledger file and loads ledgers
// into datasets.
package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/parser"
	"github.com/rumor-ml/commons.systems/findash/internal/parsers/csv"
	"github.com/rumor-ml/commons.systems/findash/internal/parsers/ofx"
	"github.com/rumor-ml/commons.systems/findash/internal/parsers/xlsx"
	"github.com/rumor-ml/commons.systems/findash/internal/schema"
)

// Registry holds all registered parsers
type Registry struct {
	parsers []parser.Parser
}

// New creates a registry with all built-in parsers. Spreadsheet parsers
// resolve headers against s.
func New(s *schema.Schema) (*Registry, error) {
	if s == nil {
		return nil, fmt.Errorf("column schema cannot be nil")
	}
	r := &Registry{}
	for _, p := range []parser.Parser{
		xlsx.NewParser(s),
		csv.NewParser(s),
		ofx.NewParser(),
	} {
		if err := r.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register built-in parser: %w", err)
		}
	}
	return r, nil
}

// MustNew creates a registry with the embedded column schema and panics on
// failure. Intended for tests and program initialization.
func MustNew() *Registry {
	s, err := schema.LoadEmbedded()
	if err != nil {
		panic(err)
	}
	r, err := New(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a custom parser (for extensibility)
func (r *Registry) Register(p parser.Parser) error {
	if p == nil {
		return fmt.Errorf("cannot register nil parser")
	}
	for _, existing := range r.parsers {
		if existing.Name() == p.Name() {
			return fmt.Errorf("parser %q already registered", p.Name())
		}
	}
	r.parsers = append(r.parsers, p)
	return nil
}

// FindParser returns the best parser for this file.
// Reads the first parser.HeaderSize bytes for format detection via header
// inspection, enough for zip magic, OFX markers and a CSV header line.
func (r *Registry) FindParser(path string) (parser.Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, parser.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	// Short files are fine; parsers receive whatever was read.
	header = header[:n]

	for _, p := range r.parsers {
		if p.CanParse(path, header) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no parser found for file: %s", path)
}

// Open parses one ledger file with the parser FindParser selects.
func (r *Registry) Open(ctx context.Context, path string) (*domain.Dataset, error) {
	p, err := r.FindParser(path)
	if err != nil {
		return nil, err
	}

	meta, err := parser.NewMetadata(path, time.Now())
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	ds, err := p.Parse(ctx, f, meta)
	if err != nil {
		return nil, fmt.Errorf("%s parser: %w", p.Name(), err)
	}
	return ds, nil
}

// ListParsers returns all registered parsers
func (r *Registry) ListParsers() []string {
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.Name()
	}
	return names
}
