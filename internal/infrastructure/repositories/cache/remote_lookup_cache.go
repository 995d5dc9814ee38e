// Package cache keeps the results of expensive source-control lookups for a
// short time so that repeated reports do not hit the remote host again.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

const (
	operationPullRequests = "pull_requests"
	operationTags         = "tags"
)

// Options configures a RemoteLookupCache. Zero values fall back to the defaults.
// Timeout bounds each shared fetch, which no single caller can cancel.
type Options struct {
	TTL        time.Duration
	Size       int
	Timeout    time.Duration
	Now        func() time.Time
	Registerer prometheus.Registerer
}

// RemoteLookupCache memoises pull-request searches and tag listings, each in
// its own LRU store bounded by Size and expiring after TTL.
type RemoteLookupCache struct {
	pullRequests *store
	tags         *store
}

// NewRemoteLookupCache creates an empty cache.
func NewRemoteLookupCache(opts Options) *RemoteLookupCache {
	if opts.TTL <= 0 {
		opts.TTL = entities.DefaultCacheTTL
	}
	if opts.Size <= 0 {
		opts.Size = entities.DefaultCacheSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = entities.DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := newMetrics(opts.Registerer)
	return &RemoteLookupCache{
		pullRequests: newStore(operationPullRequests, opts, m),
		tags:         newStore(operationTags, opts, m),
	}
}

// Len returns the number of live entries per operation, for diagnostics.
func (it *RemoteLookupCache) Len() (pullRequests, tags int) {
	return it.pullRequests.len(), it.tags.len()
}

type entry struct {
	value     any
	expiresAt time.Time
}

type store struct {
	operation string
	ttl       time.Duration
	timeout   time.Duration
	now       func() time.Time
	metrics   *metrics

	mu      sync.Mutex
	entries *lru.Cache
	flight  singleflight.Group
}

func newStore(operation string, opts Options, m *metrics) *store {
	s := &store{
		operation: operation,
		ttl:       opts.TTL,
		timeout:   opts.Timeout,
		now:       opts.Now,
		metrics:   m,
		entries:   lru.New(opts.Size),
	}
	s.entries.OnEvicted = func(key lru.Key, _ any) {
		logger.Debugf("Evicted %s cache entry %v", operation, key)
		s.metrics.record(operation, resultEviction)
	}
	return s
}

func (s *store) get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.entries.Get(key)
	if !ok {
		return nil, false
	}
	cached, _ := raw.(entry)
	if !s.now().Before(cached.expiresAt) {
		// expired entries are dropped without counting as evictions
		onEvicted := s.entries.OnEvicted
		s.entries.OnEvicted = nil
		s.entries.Remove(key)
		s.entries.OnEvicted = onEvicted
		return nil, false
	}
	return cached.value, true
}

func (s *store) add(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Add(key, entry{value: value, expiresAt: s.now().Add(s.ttl)})
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}

// load returns the cached value for key or calls fetch once for all concurrent
// callers of the same key. The fetch runs detached from ctx, so a caller that
// gives up only stops waiting. Failed fetches are not cached.
func (s *store) load(
	ctx context.Context,
	key string,
	fetch func(ctx context.Context) (any, error),
) (any, error) {
	if value, ok := s.get(key); ok {
		s.metrics.record(s.operation, resultHit)
		return value, nil
	}
	s.metrics.record(s.operation, resultMiss)

	shared := context.WithoutCancel(ctx)
	results := s.flight.DoChan(key, func() (any, error) {
		if cached, ok := s.get(key); ok {
			return cached, nil
		}
		fetchCtx, cancel := context.WithTimeout(shared, s.timeout)
		defer cancel()

		fetched, fetchErr := fetch(fetchCtx)
		if fetchErr != nil {
			s.metrics.record(s.operation, resultError)
			return nil, fetchErr
		}
		s.add(key, fetched)
		return fetched, nil
	})

	select {
	case result := <-results:
		return result.Val, result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
