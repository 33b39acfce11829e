package manifest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dshills/orchestrate/service"
)

// Source scans directories for *.json service manifests. Directories
// are searched in order; when two manifests describe the same service
// type, the first one found wins. Missing directories are not errors.
type Source struct {
	paths  []string
	logger *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithPaths sets the manifest search paths.
func WithPaths(paths ...string) Option {
	return func(s *Source) {
		s.paths = paths
	}
}

// WithLogger sets the logger for per-file diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a manifest source.
func New(opts ...Option) *Source {
	s := &Source{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the configured search paths.
func (s *Source) Paths() []string {
	return s.paths
}

// Load scans every configured path and returns the discovered
// descriptors. Per-file problems are logged and skipped; a missing or
// unreadable directory is skipped the same way.
func (s *Source) Load(_ context.Context) ([]service.Descriptor, error) {
	seen := make(map[string]bool)
	var descs []service.Descriptor

	for _, base := range s.paths {
		entries, err := os.ReadDir(base)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn("manifest path unreadable; skipping",
					"path", base, "error", err)
			}
			continue
		}

		names := make([]string, 0, len(entries))
		for _, ent := range entries {
			if ent.IsDir() || filepath.Ext(ent.Name()) != ".json" {
				continue
			}
			names = append(names, ent.Name())
		}
		// Deterministic order within a directory.
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(base, name)
			data, err := os.ReadFile(path)
			if err != nil {
				s.logger.Warn("manifest unreadable; skipping",
					"path", path, "error", err)
				continue
			}

			fileDescs, errs := Parse(data)
			for _, perr := range errs {
				s.logger.Warn("manifest entry skipped",
					"path", path, "error", perr)
			}

			for _, d := range fileDescs {
				if seen[d.Type] {
					// First path wins.
					s.logger.Debug("duplicate manifest entry ignored",
						"path", path, "service", d.Type)
					continue
				}
				seen[d.Type] = true
				descs = append(descs, d)
			}
		}
	}

	return descs, nil
}
