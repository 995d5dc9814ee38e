//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

// SpySourceControlRepository implements repositories.SourceControlRepository
// as a configurable spy. It is safe for concurrent use.
type SpySourceControlRepository struct {
	ProviderName string

	// --- SearchMergedPullRequests ---
	PullRequests map[string]entities.PullRequestPage // branch -> page
	SearchErr    error

	// --- ListTags ---
	Tags    []entities.Tag
	TagsErr error

	// --- FetchFile ---
	Files    map[string][]byte // "branch:path" -> content
	FetchErr error

	mu sync.Mutex
	// spy: branches searched, prefixes listed, files fetched
	SearchedBranches []string
	ListedPrefixes   []string
	FetchedFiles     []string
}

var _ repositories.SourceControlRepository = (*SpySourceControlRepository)(nil)

func (s *SpySourceControlRepository) Name() string {
	if s.ProviderName == "" {
		return "spy"
	}
	return s.ProviderName
}

func (s *SpySourceControlRepository) SearchMergedPullRequests(
	_ context.Context,
	_ entities.Repository,
	branch string,
) (entities.PullRequestPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SearchedBranches = append(s.SearchedBranches, branch)
	if s.SearchErr != nil {
		return entities.PullRequestPage{}, s.SearchErr
	}
	return s.PullRequests[branch], nil
}

func (s *SpySourceControlRepository) ListTags(
	_ context.Context,
	_ entities.Repository,
	prefix string,
) ([]entities.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListedPrefixes = append(s.ListedPrefixes, prefix)
	return s.Tags, s.TagsErr
}

func (s *SpySourceControlRepository) FetchFile(
	_ context.Context,
	_ entities.Repository,
	branch, path string,
) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := branch + ":" + path
	s.FetchedFiles = append(s.FetchedFiles, key)
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	if content, ok := s.Files[key]; ok {
		return content, nil
	}
	return nil, fmt.Errorf("file not found: %s", key)
}

// SearchCount returns how many searches reached the spy.
func (s *SpySourceControlRepository) SearchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.SearchedBranches)
}

// ListCount returns how many tag listings reached the spy.
func (s *SpySourceControlRepository) ListCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ListedPrefixes)
}
