package providers

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/crossgen/crossgen/pkg/telemetry"
	"github.com/crossgen/crossgen/pkg/tumbler"
)

// Registry holds the provider implementations available to a generation
// run. Callers populate it at startup — from built-in constructors or from
// script-provider bundles on disk — and resolve a suite's ordered provider
// list against it.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]tumbler.Provider
	log       *telemetry.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(logger *telemetry.Logger) *Registry {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	return &Registry{
		providers: make(map[string]tumbler.Provider),
		log:       logger.NewComponentLogger("registry"),
	}
}

// Register adds a provider. Registering a second provider under an
// existing name is a configuration error.
func (r *Registry) Register(p tumbler.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Name()]; exists {
		return tumbler.NewConfigurationError("provider already registered", nil).
			WithName(p.Name())
	}
	r.providers[p.Name()] = p
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (tumbler.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, tumbler.NewConfigurationError("unknown provider", nil).WithName(name)
	}
	return p, nil
}

// List returns the names of all registered providers in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a suite's ordered provider name list to provider instances,
// preserving order. Any unknown name fails the whole resolution.
func (r *Registry) Resolve(names []string) ([]tumbler.Provider, error) {
	resolved := make([]tumbler.Provider, 0, len(names))
	for _, name := range names {
		p, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, p)
	}
	return resolved, nil
}

// ScanDirectory discovers script-provider bundles under dir: every
// subdirectory containing a manifest.yaml is loaded and registered. A
// malformed bundle fails the scan; generation never starts with a
// half-populated registry.
func (r *Registry) ScanDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return tumbler.NewConfigurationError("failed to read provider directory", err).
			WithName(dir)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(dir, entry.Name(), ManifestFilename)
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}

		p, err := NewProviderFromManifest(manifestPath)
		if err != nil {
			return tumbler.NewConfigurationError("failed to load provider bundle", err).
				WithName(manifestPath)
		}
		if err := r.Register(p); err != nil {
			return err
		}
		r.log.WithProvider(p.Name()).Debug("Registered script provider")
	}

	return nil
}
