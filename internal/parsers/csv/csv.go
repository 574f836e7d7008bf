// Package csv provides delimited-text ledger parsing for findash
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/parser"
	"github.com/rumor-ml/commons.systems/findash/internal/schema"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser reads bank exports saved as CSV. Exports may be UTF-8 (with or
// without a byte order mark) or Windows-1251, and may be separated by
// semicolons, commas or tabs.
type Parser struct {
	schema *schema.Schema
}

// NewParser creates a CSV parser resolving headers against s.
func NewParser(s *schema.Schema) *Parser {
	return &Parser{schema: s}
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "csv"
}

// CanParse checks if this parser can handle the file based on extension and header
func (p *Parser) CanParse(path string, header []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" {
		return false
	}

	// The sniffed header may end mid-line or mid-rune.
	if i := bytes.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	} else {
		for n := 0; n < utf8.UTFMax-1 && len(header) > 0 && !utf8.Valid(header); n++ {
			header = header[:len(header)-1]
		}
	}
	text, err := decode(header)
	if err != nil {
		return false
	}
	line := strings.TrimRight(text, "\r")

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = detectDelimiter(line)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return false
	}
	return p.schema.Resolve(record).Len() > 0
}

// Parse reads the whole CSV export into a dataset
func (p *Parser) Parse(ctx context.Context, r io.Reader, meta *parser.Metadata) (*domain.Dataset, error) {
	// Check if context was cancelled before parsing
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content%s: %w", parser.Source(meta), err)
	}
	text, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV content%s: %w", parser.Source(meta), err)
	}

	firstLine, _, _ := strings.Cut(text, "\n")
	csvReader := csv.NewReader(strings.NewReader(text))
	csvReader.Comma = detectDelimiter(firstLine)
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content%s: %w", parser.Source(meta), err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("CSV file is empty%s", parser.Source(meta))
	}

	ds, err := parser.BuildDataset(records[0], records[1:], p.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transactions%s: %w", parser.Source(meta), err)
	}
	return ds, nil
}

// decode returns content as UTF-8 text. Input that is not valid UTF-8 is
// treated as Windows-1251.
func decode(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), content)
	if err != nil {
		return "", fmt.Errorf("content is neither UTF-8 nor Windows-1251: %w", err)
	}
	return string(decoded), nil
}

// detectDelimiter picks the most frequent separator in the header line.
// Semicolon wins ties; a line without separators defaults to comma.
func detectDelimiter(line string) rune {
	best, bestCount := ',', 0
	for _, d := range []rune{';', ',', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
