// Package registry manages source adapter registration and instantiation.
// Adapters register themselves from init functions; the orchestrator asks
// the registry for instances by name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/chainsight-io/chainsight/pkg/config"
	"github.com/chainsight-io/chainsight/pkg/connector/core"
	"github.com/chainsight-io/chainsight/pkg/cserrors"
	"github.com/chainsight-io/chainsight/pkg/logger"
)

// SourceFactory creates a source adapter instance from the pipeline
// configuration.
type SourceFactory func(cfg *config.PipelineConfig) (core.Source, error)

// SourceInfo describes a registered adapter for discovery commands.
type SourceInfo struct {
	Name        string
	Description string
}

// Registry manages source adapter registration and instantiation
type Registry struct {
	sources map[string]SourceFactory
	infos   map[string]SourceInfo
	mu      sync.RWMutex
	logger  *zap.Logger
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]SourceFactory),
		infos:   make(map[string]SourceInfo),
		logger:  logger.Get().With(zap.String("component", "source_registry")),
	}
}

// RegisterSource registers a source adapter factory
func (r *Registry) RegisterSource(name string, factory SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return cserrors.New(cserrors.ErrorTypeConfig, fmt.Sprintf("source adapter %s already registered", name))
	}

	r.sources[name] = factory
	return nil
}

// RegisterSourceInfo records descriptive metadata for a registered adapter
func (r *Registry) RegisterSourceInfo(info SourceInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.infos[info.Name] = info
	return nil
}

// CreateSource creates a source adapter instance
func (r *Registry) CreateSource(name string, cfg *config.PipelineConfig) (core.Source, error) {
	r.mu.RLock()
	factory, exists := r.sources[name]
	r.mu.RUnlock()

	if !exists {
		return nil, cserrors.New(cserrors.ErrorTypeConfig, fmt.Sprintf("source adapter %s not found", name))
	}

	source, err := factory(cfg)
	if err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeConfig, fmt.Sprintf("failed to create source adapter %s", name))
	}

	return source, nil
}

// ListSources returns the registered adapter names sorted ascending
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SourceInfos returns descriptive metadata for all registered adapters
func (r *Registry) SourceInfos() []SourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]SourceInfo, 0, len(r.infos))
	for _, info := range r.infos {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Package-level helpers operating on the global registry.

// RegisterSource registers a source adapter factory globally
func RegisterSource(name string, factory SourceFactory) error {
	return globalRegistry.RegisterSource(name, factory)
}

// RegisterSourceInfo records adapter metadata globally
func RegisterSourceInfo(info SourceInfo) error {
	return globalRegistry.RegisterSourceInfo(info)
}

// CreateSource creates an adapter instance from the global registry
func CreateSource(name string, cfg *config.PipelineConfig) (core.Source, error) {
	return globalRegistry.CreateSource(name, cfg)
}

// ListSources lists adapter names from the global registry
func ListSources() []string {
	return globalRegistry.ListSources()
}

// SourceInfos lists adapter metadata from the global registry
func SourceInfos() []SourceInfo {
	return globalRegistry.SourceInfos()
}
