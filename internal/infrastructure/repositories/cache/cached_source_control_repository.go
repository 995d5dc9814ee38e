package cache

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

// CachedSourceControlRepository decorates a SourceControlRepository with a
// RemoteLookupCache. File fetches are passed through uncached. Returned pages
// and tag slices are shared between callers and must not be modified.
type CachedSourceControlRepository struct {
	inner repositories.SourceControlRepository
	cache *RemoteLookupCache
	scope string
}

var _ repositories.SourceControlRepository = (*CachedSourceControlRepository)(nil)

// NewCachedSourceControlRepository wraps inner. scope separates providers that
// share one cache, usually the configured provider name.
func NewCachedSourceControlRepository(
	inner repositories.SourceControlRepository,
	cache *RemoteLookupCache,
	scope string,
) *CachedSourceControlRepository {
	return &CachedSourceControlRepository{inner: inner, cache: cache, scope: scope}
}

func (it *CachedSourceControlRepository) Name() string { return it.inner.Name() }

func (it *CachedSourceControlRepository) SearchMergedPullRequests(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (entities.PullRequestPage, error) {
	key := it.key(repo, "pullrequests", branch)
	value, err := it.cache.pullRequests.load(ctx, key, func(fetchCtx context.Context) (any, error) {
		logger.Infof("Getting pull requests for: %s", key)
		return it.inner.SearchMergedPullRequests(fetchCtx, repo, branch)
	})
	if err != nil {
		return entities.PullRequestPage{}, err
	}
	page, _ := value.(entities.PullRequestPage)
	return page, nil
}

func (it *CachedSourceControlRepository) ListTags(
	ctx context.Context,
	repo entities.Repository,
	prefix string,
) ([]entities.Tag, error) {
	key := it.key(repo, "tags", prefix)
	value, err := it.cache.tags.load(ctx, key, func(fetchCtx context.Context) (any, error) {
		logger.Infof("Getting tags for: %s", key)
		return it.inner.ListTags(fetchCtx, repo, prefix)
	})
	if err != nil {
		return nil, err
	}
	tags, _ := value.([]entities.Tag)
	return tags, nil
}

func (it *CachedSourceControlRepository) FetchFile(
	ctx context.Context,
	repo entities.Repository,
	branch, path string,
) ([]byte, error) {
	return it.inner.FetchFile(ctx, repo, branch, path)
}

func (it *CachedSourceControlRepository) key(repo entities.Repository, operation, query string) string {
	return strings.Join([]string{
		it.scope, repo.Organization, repo.Project, repo.Name, repo.Path, operation, query,
	}, "|")
}
