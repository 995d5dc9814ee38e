package github

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

const (
	providerName = "github"
	perPage      = 50
	maxTagPages  = 10
)

// GitHubSourceControlRepository implements repositories.SourceControlRepository for GitHub.
type GitHubSourceControlRepository struct {
	client *gh.Client
}

// NewSourceControlRepository creates a GitHub provider from its settings.
// A base URL switches the client to a GitHub Enterprise endpoint.
func NewSourceControlRepository(
	settings entities.ProviderSettings,
	timeout time.Duration,
) repositories.SourceControlRepository {
	client := gh.NewClient(&http.Client{Timeout: timeout})
	if settings.Token != "" {
		client = client.WithAuthToken(settings.Token)
	}
	if settings.BaseURL != "" {
		if enterprise, err := client.WithEnterpriseURLs(settings.BaseURL, settings.BaseURL); err == nil {
			client = enterprise
		}
	}
	return &GitHubSourceControlRepository{client: client}
}

func (p *GitHubSourceControlRepository) Name() string { return providerName }

// SearchMergedPullRequests lists the most recently updated closed pull requests
// against branch and keeps the merged ones, most recent merge first. GitHub has
// no merged-only filter and cannot sort by merge time.
func (p *GitHubSourceControlRepository) SearchMergedPullRequests(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (entities.PullRequestPage, error) {
	prs, _, err := p.client.PullRequests.List(
		ctx, repo.Organization, repo.Name,
		&gh.PullRequestListOptions{
			State:       "closed",
			Base:        branch,
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: gh.ListOptions{PerPage: perPage},
		},
	)
	if err != nil {
		return entities.PullRequestPage{}, fmt.Errorf(
			"%w: failed to list pull requests: %w", entities.ErrRemoteUnavailable, err,
		)
	}

	merged := make([]*gh.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if pr.MergedAt != nil {
			merged = append(merged, pr)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].GetMergedAt().After(merged[j].GetMergedAt().Time)
	})

	items := make([]entities.MergedPullRequest, 0, len(merged))
	for _, pr := range merged {
		items = append(items, entities.MergedPullRequest{
			Title:         pr.GetTitle(),
			MergeCommitID: pr.GetMergeCommitSHA(),
			Author:        pr.GetUser().GetLogin(),
			HTMLLink:      pr.GetHTMLURL(),
		})
	}

	return entities.PullRequestPage{
		PageLength: perPage,
		TotalSize:  len(items),
		Items:      items,
	}, nil
}

// ListTags returns the tags starting with prefix in the order the tags endpoint
// lists them, which does not follow commit date.
func (p *GitHubSourceControlRepository) ListTags(
	ctx context.Context,
	repo entities.Repository,
	prefix string,
) ([]entities.Tag, error) {
	var tags []entities.Tag
	opts := &gh.ListOptions{PerPage: perPage}

	for range maxTagPages {
		page, resp, err := p.client.Repositories.ListTags(ctx, repo.Organization, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list tags: %w", entities.ErrRemoteUnavailable, err)
		}

		for _, tag := range page {
			if !strings.HasPrefix(tag.GetName(), prefix) {
				continue
			}
			tags = append(tags, entities.Tag{
				Name:           tag.GetName(),
				TargetCommitID: entities.ShortCommitID(tag.GetCommit().GetSHA()),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return tags, nil
}

func (p *GitHubSourceControlRepository) FetchFile(
	ctx context.Context,
	repo entities.Repository,
	branch, path string,
) ([]byte, error) {
	fileContent, _, _, err := p.client.Repositories.GetContents(
		ctx, repo.Organization, repo.Name, strings.TrimPrefix(path, "/"),
		&gh.RepositoryContentGetOptions{Ref: branch},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get file %q: %w", entities.ErrRemoteUnavailable, path, err)
	}
	if fileContent == nil {
		return nil, fmt.Errorf("path %q is a directory, not a file", path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	return []byte(content), nil
}
