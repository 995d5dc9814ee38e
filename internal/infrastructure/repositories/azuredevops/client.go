package azuredevops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

const apiVersion = "7.0"

// Client represents an Azure DevOps API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Azure DevOps client
func NewClient(organization, pat string, timeout time.Duration) *Client {
	// Normalize organization URL
	org := strings.TrimSuffix(organization, "/")
	if org != "" && !strings.HasPrefix(org, "https://") && !strings.HasPrefix(org, "http://") {
		org = "https://dev.azure.com/" + org
	}

	return &Client{
		baseURL: org,
		token:   pat,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the base URL of the Azure DevOps organization
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PullRequest represents a completed Azure DevOps pull request
type PullRequest struct {
	ID              int    `json:"pullRequestId"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	TargetBranch    string `json:"targetRefName"`
	LastMergeCommit struct {
		CommitID string `json:"commitId"`
	} `json:"lastMergeCommit"`
	CreatedBy struct {
		DisplayName string `json:"displayName"`
	} `json:"createdBy"`
	Repository struct {
		WebURL string `json:"webUrl"`
	} `json:"repository"`
}

// Ref represents a Git reference; PeeledObjectID is set for annotated tags
type Ref struct {
	Name           string `json:"name"`
	ObjectID       string `json:"objectId"`
	PeeledObjectID string `json:"peeledObjectId"`
}

// GetCompletedPullRequests returns the completed pull requests targeting branch
func (c *Client) GetCompletedPullRequests(
	ctx context.Context,
	projectID, repoID, branch string,
	top int,
) ([]PullRequest, error) {
	endpoint := fmt.Sprintf(
		"/%s/_apis/git/repositories/%s/pullrequests?searchCriteria.status=completed"+
			"&searchCriteria.targetRefName=%s&$top=%d&api-version=%s",
		projectID, repoID, url.QueryEscape("refs/heads/"+branch), top, apiVersion,
	)

	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result struct {
		Value []PullRequest `json:"value"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse pull requests response: %w", entities.ErrRemoteUnavailable, err)
	}

	return result.Value, nil
}

// GetTagRefs returns the tag refs whose name starts with prefix, peeled to commits
func (c *Client) GetTagRefs(ctx context.Context, projectID, repoID, prefix string) ([]Ref, error) {
	endpoint := fmt.Sprintf("/%s/_apis/git/repositories/%s/refs?filter=%s&peelTags=true&api-version=%s",
		projectID, repoID, url.QueryEscape("tags/"+prefix), apiVersion)

	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result struct {
		Value []Ref `json:"value"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse tags response: %w", entities.ErrRemoteUnavailable, err)
	}

	return result.Value, nil
}

// GetFileContent returns the raw content of a file on branch
func (c *Client) GetFileContent(ctx context.Context, projectID, repoID, branch, path string) ([]byte, error) {
	endpoint := fmt.Sprintf(
		"/%s/_apis/git/repositories/%s/items?path=%s&versionDescriptor.version=%s"+
			"&versionDescriptor.versionType=branch&api-version=%s",
		projectID, repoID, url.QueryEscape(path), url.QueryEscape(branch), apiVersion,
	)

	return c.doRequest(ctx, endpoint)
}

func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set Basic Auth with PAT
	auth := base64.StdEncoding.EncodeToString([]byte(":" + c.token))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", entities.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", entities.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: API error (status %d): %s",
			entities.ErrRemoteUnavailable, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
