package repositories

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	domainRepos "github.com/rios0rios0/envtracker/internal/domain/repositories"
	"github.com/rios0rios0/envtracker/internal/infrastructure/repositories/cache"
)

// SourceControlPool hands out one cached provider per configured provider name.
// It owns the process-wide RemoteLookupCache, created from the first settings
// it sees, so repeated runs share cached lookups.
type SourceControlPool struct {
	registry   *ProviderRegistry
	registerer prometheus.Registerer

	mu        sync.Mutex
	cache     *cache.RemoteLookupCache
	providers map[string]domainRepos.SourceControlRepository
}

// NewSourceControlPool creates an empty pool backed by registry.
func NewSourceControlPool(
	registry *ProviderRegistry,
	registerer prometheus.Registerer,
) *SourceControlPool {
	return &SourceControlPool{
		registry:   registry,
		registerer: registerer,
		providers:  make(map[string]domainRepos.SourceControlRepository),
	}
}

// For returns the cached provider configured under name.
func (p *SourceControlPool) For(
	settings *entities.Settings,
	name string,
) (domainRepos.SourceControlRepository, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if provider, ok := p.providers[name]; ok {
		return provider, nil
	}

	providerSettings, ok := settings.Provider(name)
	if !ok {
		return nil, fmt.Errorf("provider %q is not configured", name)
	}

	inner, err := p.registry.Get(providerSettings, settings.RequestTimeout())
	if err != nil {
		return nil, err
	}

	if p.cache == nil {
		p.cache = cache.NewRemoteLookupCache(cache.Options{
			TTL:        settings.CacheTTL(),
			Size:       settings.CacheSize(),
			Timeout:    settings.RequestTimeout(),
			Registerer: p.registerer,
		})
	}

	provider := cache.NewCachedSourceControlRepository(inner, p.cache, name)
	p.providers[name] = provider
	return provider, nil
}
