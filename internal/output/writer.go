package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteOptions configures how a report is written
type WriteOptions struct {
	FilePath string // Output path (empty = stdout)
	Compact  bool   // Single-line JSON instead of 2-space indentation
}

// WriteReport serializes a report payload to JSON
func WriteReport(report any, w io.Writer, compact bool) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report as JSON: %w", err)
	}

	return nil
}

// WriteReportToFile writes a report to file or stdout based on options.
// Files are replaced atomically: the report is written to a temporary
// file in the same directory and renamed over the target.
func WriteReportToFile(report any, opts WriteOptions) (err error) {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	// Write to stdout if no file path specified
	if opts.FilePath == "" {
		return WriteReport(report, os.Stdout, opts.Compact)
	}

	dir := filepath.Dir(opts.FilePath)
	f, err := os.CreateTemp(dir, "."+filepath.Base(opts.FilePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", opts.FilePath, err)
	}
	tmpPath := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = WriteReport(report, f, opts.Compact); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", opts.FilePath, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file %s: %w", opts.FilePath, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", opts.FilePath, err)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", opts.FilePath, err)
	}
	if err = os.Rename(tmpPath, opts.FilePath); err != nil {
		return fmt.Errorf("failed to replace output file %s: %w", opts.FilePath, err)
	}

	return nil
}
