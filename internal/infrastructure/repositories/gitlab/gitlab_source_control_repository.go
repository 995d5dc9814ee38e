package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

const (
	providerName = "gitlab"
	perPage      = 50
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// GitLabSourceControlRepository implements repositories.SourceControlRepository for GitLab.
type GitLabSourceControlRepository struct {
	client *gl.Client
}

// NewSourceControlRepository creates a GitLab provider from its settings.
func NewSourceControlRepository(
	settings entities.ProviderSettings,
	timeout time.Duration,
) repositories.SourceControlRepository {
	opts := []gl.ClientOptionFunc{gl.WithHTTPClient(&http.Client{Timeout: timeout})}
	if settings.BaseURL != "" {
		opts = append(opts, gl.WithBaseURL(settings.BaseURL))
	}

	client, err := gl.NewClient(settings.Token, opts...)
	if err != nil {
		// Return a provider that will fail on use rather than panicking at construction
		return &GitLabSourceControlRepository{client: nil}
	}
	return &GitLabSourceControlRepository{client: client}
}

func (p *GitLabSourceControlRepository) Name() string { return providerName }

func (p *GitLabSourceControlRepository) SearchMergedPullRequests(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (entities.PullRequestPage, error) {
	if p.client == nil {
		return entities.PullRequestPage{}, fmt.Errorf("%w: %w", entities.ErrRemoteUnavailable, errClientNotInitialized)
	}

	mrs, resp, err := p.client.MergeRequests.ListProjectMergeRequests(
		projectID(repo),
		&gl.ListProjectMergeRequestsOptions{
			ListOptions:  gl.ListOptions{PerPage: perPage},
			State:        gl.Ptr("merged"),
			TargetBranch: gl.Ptr(branch),
			OrderBy:      gl.Ptr("merged_at"),
			Sort:         gl.Ptr("desc"),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return entities.PullRequestPage{}, fmt.Errorf(
			"%w: failed to list merge requests: %w", entities.ErrRemoteUnavailable, err,
		)
	}

	page := entities.PullRequestPage{
		PageLength: perPage,
		TotalSize:  len(mrs),
		Items:      make([]entities.MergedPullRequest, 0, len(mrs)),
	}
	if resp != nil && resp.TotalItems > 0 {
		page.TotalSize = int(resp.TotalItems)
	}

	for _, mr := range mrs {
		mergeCommit := mr.MergeCommitSHA
		if mergeCommit == "" {
			mergeCommit = mr.SquashCommitSHA
		}
		author := ""
		if mr.Author != nil {
			author = mr.Author.Name
		}
		page.Items = append(page.Items, entities.MergedPullRequest{
			Title:         mr.Title,
			MergeCommitID: mergeCommit,
			Author:        author,
			HTMLLink:      mr.WebURL,
		})
	}
	return page, nil
}

func (p *GitLabSourceControlRepository) ListTags(
	ctx context.Context,
	repo entities.Repository,
	prefix string,
) ([]entities.Tag, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrRemoteUnavailable, errClientNotInitialized)
	}

	found, _, err := p.client.Tags.ListTags(
		projectID(repo),
		&gl.ListTagsOptions{
			ListOptions: gl.ListOptions{PerPage: perPage},
			Search:      gl.Ptr("^" + prefix),
			OrderBy:     gl.Ptr("updated"),
			Sort:        gl.Ptr("desc"),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list tags: %w", entities.ErrRemoteUnavailable, err)
	}

	tags := make([]entities.Tag, 0, len(found))
	for _, tag := range found {
		if tag.Commit == nil {
			continue
		}
		tags = append(tags, entities.Tag{
			Name:           tag.Name,
			TargetCommitID: entities.ShortCommitID(tag.Commit.ID),
		})
	}
	return tags, nil
}

func (p *GitLabSourceControlRepository) FetchFile(
	ctx context.Context,
	repo entities.Repository,
	branch, path string,
) ([]byte, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrRemoteUnavailable, errClientNotInitialized)
	}

	content, _, err := p.client.RepositoryFiles.GetRawFile(
		projectID(repo),
		strings.TrimPrefix(path, "/"),
		&gl.GetRawFileOptions{Ref: gl.Ptr(branch)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get file %q: %w", entities.ErrRemoteUnavailable, path, err)
	}
	return content, nil
}

// projectID addresses a project by its "group/name" path.
func projectID(repo entities.Repository) string {
	return repo.FullName()
}
