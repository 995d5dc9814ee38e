package repositories

import (
	"context"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// SourceControlRepository abstracts a Git hosting service (Bitbucket, GitHub,
// GitLab, Azure DevOps or a local clone). Every method is read-only.
type SourceControlRepository interface {
	// Name returns the provider type (e.g. "bitbucket", "github").
	Name() string

	// SearchMergedPullRequests returns the merged pull requests whose destination
	// is branch, most recent merge first.
	SearchMergedPullRequests(
		ctx context.Context,
		repo entities.Repository,
		branch string,
	) (entities.PullRequestPage, error)

	// ListTags returns the tags whose name starts with prefix, newest target first.
	ListTags(ctx context.Context, repo entities.Repository, prefix string) ([]entities.Tag, error)

	// FetchFile returns the raw content of path on branch.
	FetchFile(ctx context.Context, repo entities.Repository, branch, path string) ([]byte, error)
}
