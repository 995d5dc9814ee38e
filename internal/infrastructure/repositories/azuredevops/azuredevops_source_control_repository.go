package azuredevops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

const (
	providerName = "azuredevops"
	pageSize     = 50
)

// AzureDevOpsSourceControlRepository implements repositories.SourceControlRepository
// for Azure DevOps. Repositories are addressed by project and name; the
// organization comes from the repository or the provider settings.
type AzureDevOpsSourceControlRepository struct {
	token        string
	baseURL      string
	organization string
	timeout      time.Duration
}

// NewSourceControlRepository creates an Azure DevOps provider from its settings.
func NewSourceControlRepository(
	settings entities.ProviderSettings,
	timeout time.Duration,
) repositories.SourceControlRepository {
	return &AzureDevOpsSourceControlRepository{
		token:        settings.Token,
		baseURL:      settings.BaseURL,
		organization: settings.Organization,
		timeout:      timeout,
	}
}

func (p *AzureDevOpsSourceControlRepository) Name() string { return providerName }

func (p *AzureDevOpsSourceControlRepository) SearchMergedPullRequests(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (entities.PullRequestPage, error) {
	prs, err := p.client(repo).GetCompletedPullRequests(ctx, repo.Project, repo.Name, branch, pageSize)
	if err != nil {
		return entities.PullRequestPage{}, fmt.Errorf("failed to list pull requests: %w", err)
	}

	page := entities.PullRequestPage{
		PageLength: pageSize,
		TotalSize:  len(prs),
		Items:      make([]entities.MergedPullRequest, 0, len(prs)),
	}
	for _, pr := range prs {
		page.Items = append(page.Items, entities.MergedPullRequest{
			Title:         pr.Title,
			MergeCommitID: pr.LastMergeCommit.CommitID,
			Author:        pr.CreatedBy.DisplayName,
			HTMLLink:      fmt.Sprintf("%s/pullrequest/%d", pr.Repository.WebURL, pr.ID),
		})
	}
	return page, nil
}

// ListTags returns tags in the order Azure DevOps lists refs, which is by name.
func (p *AzureDevOpsSourceControlRepository) ListTags(
	ctx context.Context,
	repo entities.Repository,
	prefix string,
) ([]entities.Tag, error) {
	refs, err := p.client(repo).GetTagRefs(ctx, repo.Project, repo.Name, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tags := make([]entities.Tag, 0, len(refs))
	for _, ref := range refs {
		target := ref.PeeledObjectID
		if target == "" {
			target = ref.ObjectID
		}
		tags = append(tags, entities.Tag{
			Name:           strings.TrimPrefix(ref.Name, "refs/tags/"),
			TargetCommitID: entities.ShortCommitID(target),
		})
	}
	return tags, nil
}

func (p *AzureDevOpsSourceControlRepository) FetchFile(
	ctx context.Context,
	repo entities.Repository,
	branch, path string,
) ([]byte, error) {
	content, err := p.client(repo).GetFileContent(ctx, repo.Project, repo.Name, branch, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %q: %w", path, err)
	}
	return content, nil
}

func (p *AzureDevOpsSourceControlRepository) client(repo entities.Repository) *Client {
	organization := repo.Organization
	if organization == "" {
		organization = p.organization
	}
	if p.baseURL != "" {
		organization = strings.TrimSuffix(p.baseURL, "/") + "/" + organization
	}
	return NewClient(organization, p.token, p.timeout)
}
