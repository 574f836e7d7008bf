package registry

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/rumor-ml/commons.systems/findash/internal/dedup"
	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/scanner"
)

// Loader turns ledger paths into one dataset.
type Loader struct {
	registry *Registry
	log      zerolog.Logger
}

// NewLoader creates a loader that parses files with r.
func NewLoader(r *Registry, log zerolog.Logger) *Loader {
	return &Loader{registry: r, log: log.With().Str("component", "loader").Logger()}
}

// LoadStrict parses every path and merges the results. Directories are
// scanned for ledger files. Rows repeated across overlapping exports are
// kept once. The first failure aborts the load.
func (l *Loader) LoadStrict(ctx context.Context, paths ...string) (*domain.Dataset, dedup.Stats, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, dedup.Stats{}, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		results, err := scanner.New(path).Scan()
		if err != nil {
			return nil, dedup.Stats{}, err
		}
		for _, res := range results {
			files = append(files, res.Path)
		}
	}

	datasets := make([]*domain.Dataset, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, dedup.Stats{}, err
		}
		ds, err := l.registry.Open(ctx, file)
		if err != nil {
			return nil, dedup.Stats{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
		l.log.Debug().Str("file", file).Int("rows", ds.Len()).Msg("Parsed ledger file")
		datasets = append(datasets, ds)
	}

	merged, stats := dedup.Merge(datasets...)
	return merged, stats, nil
}

// Load is LoadStrict for callers that cannot act on a failure: errors are
// logged and an empty dataset is returned instead.
func (l *Loader) Load(ctx context.Context, paths ...string) *domain.Dataset {
	ds, stats, err := l.LoadStrict(ctx, paths...)
	if err != nil {
		l.log.Error().Err(err).Strs("paths", paths).Msg("Failed to load transactions")
		return domain.EmptyDataset()
	}
	l.log.Info().
		Int("files", stats.Files).
		Int("rows", ds.Len()).
		Int("duplicates", stats.Duplicates).
		Msg("Loaded transactions")
	return ds
}
