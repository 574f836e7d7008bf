// Package schema maps bank export headers to transaction columns.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed columns.yaml
var embeddedColumns []byte

// Field lists the header aliases of one column.
type Field struct {
	Column  domain.Column `yaml:"field"`
	Headers []string      `yaml:"headers"`
}

// File represents the top-level YAML structure
type File struct {
	Columns []Field `yaml:"columns"`
}

// Schema resolves header rows against a set of aliases.
type Schema struct {
	fields  []Field
	aliases map[string]domain.Column // normalized header → column
}

// Mapping is the result of resolving one header row.
type Mapping struct {
	// Index maps a column to its position in the header row.
	Index   map[domain.Column]int
	columns []domain.Column
}

// Columns returns the resolved columns in header order.
func (m Mapping) Columns() []domain.Column {
	return append([]domain.Column{}, m.columns...)
}

// Len returns the number of resolved columns.
func (m Mapping) Len() int {
	return len(m.columns)
}

// Cell returns the cell of record holding column c, or false when the
// column is unmapped or the record is too short.
func (m Mapping) Cell(record []string, c domain.Column) (string, bool) {
	i, ok := m.Index[c]
	if !ok || i >= len(record) {
		return "", false
	}
	return record[i], true
}

// NewSchema creates a schema from YAML data
func NewSchema(data []byte) (*Schema, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML column schema (check syntax, indentation, and field names): %w", err)
	}
	if len(file.Columns) == 0 {
		return nil, fmt.Errorf("column schema defines no columns")
	}

	aliases := make(map[string]domain.Column)
	for i, field := range file.Columns {
		if !domain.ValidateColumn(field.Column) {
			return nil, fmt.Errorf("column %d: unknown field %q", i, field.Column)
		}
		if len(field.Headers) == 0 {
			return nil, fmt.Errorf("column %d (%s): headers cannot be empty", i, field.Column)
		}
		for _, header := range field.Headers {
			key := NormalizeHeader(header)
			if key == "" {
				return nil, fmt.Errorf("column %d (%s): header cannot be empty", i, field.Column)
			}
			if existing, dup := aliases[key]; dup && existing != field.Column {
				return nil, fmt.Errorf("column %d (%s): header %q already maps to %s", i, field.Column, header, existing)
			}
			aliases[key] = field.Column
		}
	}

	fields := make([]Field, len(file.Columns))
	copy(fields, file.Columns)
	return &Schema{fields: fields, aliases: aliases}, nil
}

// LoadEmbedded loads the embedded columns.yaml file
func LoadEmbedded() (*Schema, error) {
	s, err := NewSchema(embeddedColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded column schema (possible binary corruption): %w", err)
	}
	return s, nil
}

// LoadFromFile loads a column schema from a filesystem path
func LoadFromFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read column schema: %w", err)
	}
	s, err := NewSchema(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load column schema from %q: %w", path, err)
	}
	return s, nil
}

// Resolve maps a header row to columns. Unknown headers are ignored and the
// first occurrence of a repeated column wins.
func (s *Schema) Resolve(headers []string) Mapping {
	m := Mapping{Index: make(map[domain.Column]int)}
	for i, header := range headers {
		c, ok := s.aliases[NormalizeHeader(header)]
		if !ok {
			continue
		}
		if _, seen := m.Index[c]; seen {
			continue
		}
		m.Index[c] = i
		m.columns = append(m.columns, c)
	}
	return m
}

// Fields returns a copy of the configured fields.
func (s *Schema) Fields() []Field {
	result := make([]Field, len(s.fields))
	for i, f := range s.fields {
		result[i] = Field{Column: f.Column, Headers: append([]string{}, f.Headers...)}
	}
	return result
}

// NormalizeHeader lowercases, trims and NFC-normalizes a header cell.
// A leading byte order mark is dropped.
func NormalizeHeader(header string) string {
	h := strings.TrimPrefix(header, "\ufeff")
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(h)))
}
