// internal/platform/registry/source_registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
)

// SourceRegistry gestiona el registro y construcción de sources.
// Implementa el patrón Registry + Factory para desacoplar la creación
// de sources del código de aplicación.
type SourceRegistry struct {
	mu        sync.RWMutex
	factories map[string]SourceFactory
	metadata  map[string]ports.SourceMetadata
	logger    logx.Logger
}

// SourceFactory es una función que crea una instancia de Source.
type SourceFactory func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error)

// globalRegistry es la instancia global del registry.
var globalRegistry *SourceRegistry
var once sync.Once

// Global retorna la instancia global del registry.
func Global() *SourceRegistry {
	once.Do(func() {
		globalRegistry = NewSourceRegistry(logx.New())
	})
	return globalRegistry
}

// NewSourceRegistry crea un nuevo registry de sources.
func NewSourceRegistry(logger logx.Logger) *SourceRegistry {
	return &SourceRegistry{
		factories: make(map[string]SourceFactory),
		metadata:  make(map[string]ports.SourceMetadata),
		logger:    logger.With("component", "source-registry"),
	}
}

// Register registra una source factory con su metadata.
// Típicamente llamado desde init() de cada source package.
func (r *SourceRegistry) Register(name string, factory SourceFactory, meta ports.SourceMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("source name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil for source %s", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("source %s is already registered", name)
	}

	r.factories[name] = factory
	r.metadata[name] = meta
	r.logger.Debug("source registered", "name", name, "kind", meta.Kind)

	return nil
}

// Build construye todas las sources habilitadas según la configuración.
// Una source que falla al construirse se omite con warning; el build
// completo solo falla si no pudo construirse ninguna.
func (r *SourceRegistry) Build(configs map[string]ports.SourceConfig, logger logx.Logger) ([]ports.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if configs == nil {
		return nil, fmt.Errorf("configs cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	// Orden estable por nombre para que la construcción sea determinista
	names := make([]string, 0, len(configs))
	for name, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if _, exists := r.factories[name]; !exists {
			r.logger.Warn("source not registered, skipping", "source", name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make([]ports.Source, 0, len(names))
	for _, name := range names {
		source, err := r.factories[name](configs[name], logger)
		if err != nil {
			r.logger.Warn("failed to build source", "source", name, "error", err.Error())
			continue
		}
		sources = append(sources, source)
		r.logger.Debug("source built", "name", name)
	}

	if len(sources) == 0 && len(configs) > 0 {
		return nil, fmt.Errorf("no sources could be built")
	}

	logger.Info("sources built", "count", len(sources), "requested", len(configs))
	return sources, nil
}

// List retorna los nombres de todas las sources registradas, ordenados.
func (r *SourceRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetMetadata retorna la metadata de una source registrada.
func (r *SourceRegistry) GetMetadata(name string) (ports.SourceMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.metadata[name]
	return meta, ok
}
