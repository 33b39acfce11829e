package hcl

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dshills/orchestrate/service"
)

// Source scans directories for *.hcl service manifests. Files that fail
// to parse are logged and skipped; the rest of the directory still
// loads. When two manifests describe the same service type, the first
// one found wins.
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

// New creates an HCL manifest source.
func New(opts ...Option) *Source {
	s := &Source{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load scans every configured path and returns the discovered
// descriptors.
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
			if ent.IsDir() || filepath.Ext(ent.Name()) != ".hcl" {
				continue
			}
			names = append(names, ent.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(base, name)
			fileDescs, err := ParseFile(path)
			if err != nil {
				s.logger.Warn("manifest skipped", "path", path, "error", err)
				continue
			}

			for _, d := range fileDescs {
				if seen[d.Type] {
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
