package repositories

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	domainRepos "github.com/rios0rios0/envtracker/internal/domain/repositories"
)

// ProviderFactory is a constructor function that creates a SourceControlRepository
// from its settings and the timeout applied to each remote call.
type ProviderFactory func(
	settings entities.ProviderSettings,
	timeout time.Duration,
) domainRepos.SourceControlRepository

// ProviderRegistry manages all registered source-control provider implementations.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register adds a provider factory under the given type (e.g. "bitbucket").
func (r *ProviderRegistry) Register(providerType string, factory ProviderFactory) {
	r.providers[providerType] = factory
}

// Get returns a configured provider instance for the given settings.
func (r *ProviderRegistry) Get(
	settings entities.ProviderSettings,
	timeout time.Duration,
) (domainRepos.SourceControlRepository, error) {
	factory, ok := r.providers[settings.Type]
	if !ok {
		return nil, fmt.Errorf(
			"unknown provider type %q (available: %s)", settings.Type, strings.Join(r.Names(), ", "),
		)
	}
	return factory(settings, timeout), nil
}

// Names returns the sorted list of registered provider types.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
