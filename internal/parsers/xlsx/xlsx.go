// Package xlsx provides Excel workbook ledger parsing for findash
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/parser"
	"github.com/rumor-ml/commons.systems/findash/internal/schema"
)

// zipMagic opens every OOXML workbook.
var zipMagic = []byte("PK\x03\x04")

// Parser reads bank exports saved as Excel workbooks. The header row is the
// first non-empty row of the sheet.
type Parser struct {
	schema *schema.Schema
}

// NewParser creates a workbook parser resolving headers against s.
func NewParser(s *schema.Schema) *Parser {
	return &Parser{schema: s}
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "xlsx"
}

// CanParse checks if this parser can handle the file based on extension and header
func (p *Parser) CanParse(path string, header []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".xlsm" {
		return false
	}
	return bytes.HasPrefix(header, zipMagic)
}

// Parse reads one worksheet into a dataset. The sheet named in meta is used
// when set, otherwise the first sheet of the workbook.
func (p *Parser) Parse(ctx context.Context, r io.Reader, meta *parser.Metadata) (*domain.Dataset, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook%s: %w", parser.Source(meta), err)
	}
	defer f.Close()

	sheet := ""
	if meta != nil {
		sheet = meta.Sheet()
	}
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets%s", parser.Source(meta))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q%s: %w", sheet, parser.Source(meta), err)
	}

	// Check if context was cancelled after reading the sheet.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	headerRow := -1
	for i, row := range rows {
		if len(row) > 0 {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("sheet %q is empty%s", sheet, parser.Source(meta))
	}

	ds, err := parser.BuildDataset(rows[headerRow], rows[headerRow+1:], p.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheet %q%s: %w", sheet, parser.Source(meta), err)
	}
	return ds, nil
}
