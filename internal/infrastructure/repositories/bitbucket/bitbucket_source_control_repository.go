package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

const (
	providerName   = "bitbucket"
	defaultBaseURL = "https://api.bitbucket.org/2.0"
)

// BitbucketSourceControlRepository implements repositories.SourceControlRepository
// for Bitbucket Cloud using app-password basic authentication.
type BitbucketSourceControlRepository struct {
	baseURL    string
	username   string
	token      string
	httpClient *http.Client
}

// NewSourceControlRepository creates a Bitbucket provider from its settings.
func NewSourceControlRepository(
	settings entities.ProviderSettings,
	timeout time.Duration,
) repositories.SourceControlRepository {
	baseURL := strings.TrimSuffix(settings.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &BitbucketSourceControlRepository{
		baseURL:    baseURL,
		username:   settings.Username,
		token:      settings.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *BitbucketSourceControlRepository) Name() string { return providerName }

type pullRequestsResponse struct {
	PageLen int              `json:"pagelen"`
	Size    int              `json:"size"`
	Values  []apiPullRequest `json:"values"`
}

type apiPullRequest struct {
	Title       string `json:"title"`
	MergeCommit struct {
		Hash string `json:"hash"`
	} `json:"merge_commit"`
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
	Links struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"links"`
}

type tagsResponse struct {
	Values []struct {
		Name   string `json:"name"`
		Target struct {
			Hash string `json:"hash"`
		} `json:"target"`
	} `json:"values"`
}

func (p *BitbucketSourceControlRepository) SearchMergedPullRequests(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (entities.PullRequestPage, error) {
	query := fmt.Sprintf(`state="MERGED" AND destination.branch.name="%s"`, branch)
	endpoint := fmt.Sprintf("%s/pullrequests?q=%s", p.repositoryURL(repo), url.QueryEscape(query))

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return entities.PullRequestPage{}, err
	}

	var decoded pullRequestsResponse
	if unmarshalErr := json.Unmarshal(body, &decoded); unmarshalErr != nil {
		return entities.PullRequestPage{}, fmt.Errorf(
			"%w: unable to decode pull requests response: %w", entities.ErrRemoteUnavailable, unmarshalErr,
		)
	}

	page := entities.PullRequestPage{
		PageLength: decoded.PageLen,
		TotalSize:  decoded.Size,
		Items:      make([]entities.MergedPullRequest, 0, len(decoded.Values)),
	}
	for _, item := range decoded.Values {
		page.Items = append(page.Items, entities.MergedPullRequest{
			Title:         item.Title,
			MergeCommitID: item.MergeCommit.Hash,
			Author:        item.Author.DisplayName,
			HTMLLink:      item.Links.HTML.Href,
		})
	}
	return page, nil
}

func (p *BitbucketSourceControlRepository) ListTags(
	ctx context.Context,
	repo entities.Repository,
	prefix string,
) ([]entities.Tag, error) {
	query := fmt.Sprintf(`name~"%s"`, prefix)
	endpoint := fmt.Sprintf("%s/refs/tags?q=%s&sort=-target.date", p.repositoryURL(repo), url.QueryEscape(query))

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var decoded tagsResponse
	if unmarshalErr := json.Unmarshal(body, &decoded); unmarshalErr != nil {
		return nil, fmt.Errorf(
			"%w: unable to decode tags response: %w", entities.ErrRemoteUnavailable, unmarshalErr,
		)
	}

	tags := make([]entities.Tag, 0, len(decoded.Values))
	for _, item := range decoded.Values {
		tags = append(tags, entities.Tag{
			Name:           item.Name,
			TargetCommitID: entities.ShortCommitID(item.Target.Hash),
		})
	}
	return tags, nil
}

func (p *BitbucketSourceControlRepository) FetchFile(
	ctx context.Context,
	repo entities.Repository,
	branch, path string,
) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/src/%s/%s",
		p.repositoryURL(repo), url.PathEscape(branch), strings.TrimPrefix(path, "/"))
	return p.get(ctx, endpoint)
}

func (p *BitbucketSourceControlRepository) repositoryURL(repo entities.Repository) string {
	return fmt.Sprintf("%s/repositories/%s/%s", p.baseURL, repo.Organization, repo.Name)
}

func (p *BitbucketSourceControlRepository) get(ctx context.Context, endpoint string) ([]byte, error) {
	logger.Debugf("URL to query: %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.username != "" || p.token != "" {
		req.SetBasicAuth(p.username, p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed for URL %s: %w", entities.ErrRemoteUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", entities.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"%w: non-success status code: %d for URL %s",
			entities.ErrRemoteUnavailable, resp.StatusCode, endpoint,
		)
	}
	return body, nil
}
