package lua

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/orchestrate/service"
)

// Source scans directories for *.lua scripts, registers a generated
// definition in the catalog for every service they declare, and emits
// a matching descriptor. When two scripts declare the same service
// name, the first one found wins.
type Source struct {
	catalog *service.Catalog
	paths   []string
	logger  *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithPaths sets the script search paths.
func WithPaths(paths ...string) Option {
	return func(s *Source) {
		s.paths = paths
	}
}

// WithLogger sets the logger for per-script diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Lua script source. Generated definitions are registered
// into catalog at load time, which must be the same catalog the
// orchestrator resolves against.
func New(catalog *service.Catalog, opts ...Option) *Source {
	s := &Source{catalog: catalog, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load scans every configured path, loading each script once to
// collect its declarations. Scripts that fail to run are logged and
// skipped.
func (s *Source) Load(_ context.Context) ([]service.Descriptor, error) {
	seen := make(map[string]bool)
	var descs []service.Descriptor

	for _, base := range s.paths {
		entries, err := os.ReadDir(base)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn("script path unreadable; skipping",
					"path", base, "error", err)
			}
			continue
		}

		names := make([]string, 0, len(entries))
		for _, ent := range entries {
			if ent.IsDir() || filepath.Ext(ent.Name()) != ".lua" {
				continue
			}
			names = append(names, ent.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(base, name)
			for _, d := range s.loadScript(path) {
				if seen[d.Type] {
					s.logger.Debug("duplicate script service ignored",
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

// loadScript collects one script's declarations and turns each into a
// catalog definition plus a descriptor. The metadata state is closed
// right away; instances re-execute the script on construction so each
// one owns a private interpreter.
func (s *Source) loadScript(path string) []service.Descriptor {
	st, decls, err := runScript(path)
	if err != nil {
		s.logger.Warn("script skipped", "path", path, "error", err)
		return nil
	}
	defer st.Close()

	var descs []service.Descriptor
	for _, d := range decls {
		if d.declareErr != nil {
			s.logger.Warn("service declaration skipped",
				"path", path, "error", d.declareErr)
			continue
		}

		def := definitionFor(path, d, s.logger)
		if err := s.catalog.Register(def); err != nil {
			if errors.Is(err, service.ErrDuplicateIdentity) {
				s.logger.Debug("script service already in catalog",
					"path", path, "service", d.name)
			} else {
				s.logger.Warn("script service not registered",
					"path", path, "service", d.name, "error", err)
			}
			continue
		}

		desc := service.NewDescriptor(d.name)
		if len(d.args) > 0 {
			desc = desc.WithArgs(d.args)
		}
		descs = append(descs, desc)
	}

	return descs
}

// definitionFor builds the generated definition for one declaration.
// The declaration's handler functions belong to the metadata state and
// are not reused; Bind routes each event to the instance's own handler
// table.
func definitionFor(path string, d *decl, logger *slog.Logger) service.Definition {
	name := d.name
	events := make([]string, len(d.events))
	copy(events, d.events)

	return service.Definition{
		Identity:  name,
		Priority:  d.priority,
		Retention: d.retention,
		New: func() any {
			inst, err := newInstance(path, name)
			if err != nil {
				logger.Warn("lua service construction failed",
					"service", name, "path", path, "error", err)
				return nil
			}
			return inst
		},
		Bind: func(b *service.Binder) {
			for _, event := range events {
				service.On(b, event, func(in *Instance, ctx *service.Context) service.Result {
					return in.invoke(ctx.Event, ctx)
				})
			}
		},
	}
}

// ScriptName derives a service-ish name from a script path, for hosts
// that want single-file naming conventions.
func ScriptName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".lua")
}
