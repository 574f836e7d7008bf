package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Metadata contains context about the ledger file being parsed.
//
// Create instances using NewMetadata(filePath, detectedAt). This constructor validates
// required fields (filePath and detectedAt) to ensure metadata is always in a valid state.
// The optional sheet name can be set after construction.
type Metadata struct {
	filePath   string
	sheet      string // Worksheet to read from workbooks; empty means the first sheet
	detectedAt time.Time
}

// NewMetadata creates a new Metadata instance with validated required fields.
// Returns an error if filePath is empty or detectedAt is zero.
func NewMetadata(filePath string, detectedAt time.Time) (*Metadata, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if detectedAt.IsZero() {
		return nil, fmt.Errorf("detected time cannot be zero")
	}
	return &Metadata{
		filePath:   filePath,
		detectedAt: detectedAt,
	}, nil
}

// FilePath returns the file path
func (m *Metadata) FilePath() string {
	return m.filePath
}

// Extension returns the lowercased file extension including the dot
func (m *Metadata) Extension() string {
	return strings.ToLower(filepath.Ext(m.filePath))
}

// Sheet returns the worksheet name, or empty for the first sheet
func (m *Metadata) Sheet() string {
	return m.sheet
}

// DetectedAt returns the timestamp when the file was detected
func (m *Metadata) DetectedAt() time.Time {
	return m.detectedAt
}

// SetSheet sets the worksheet name
func (m *Metadata) SetSheet(sheet string) {
	m.sheet = sheet
}

// Source formats the file path for error messages
func Source(meta *Metadata) string {
	if meta != nil && meta.FilePath() != "" {
		return fmt.Sprintf(" from %s", meta.FilePath())
	}
	return ""
}
