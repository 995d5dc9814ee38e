// Package status reads live build information from the endpoints services expose.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

type statusResponse struct {
	AppBuild      string `json:"appBuild"`
	GitCommitID   string `json:"gitCommitId"`
	GitCommitTime string `json:"gitCommitTime"`
}

// HTTPDeploymentStatusRepository reads the JSON status document of a service.
type HTTPDeploymentStatusRepository struct {
	httpClient *http.Client
}

var _ repositories.DeploymentStatusRepository = (*HTTPDeploymentStatusRepository)(nil)

// NewHTTPDeploymentStatusRepository creates a status reader. Requests are
// bounded by the caller's context.
func NewHTTPDeploymentStatusRepository() *HTTPDeploymentStatusRepository {
	return &HTTPDeploymentStatusRepository{httpClient: &http.Client{}}
}

// GetStatus fetches the build, commit id and commit time a service reports.
// A document without appBuild or gitCommitId is treated as unavailable.
func (it *HTTPDeploymentStatusRepository) GetStatus(
	ctx context.Context,
	locator string,
) (entities.BuildStatus, error) {
	var decoded statusResponse
	if err := getJSON(ctx, it.httpClient, locator, &decoded); err != nil {
		return entities.UnknownBuildStatus(), err
	}

	if decoded.AppBuild == "" || decoded.GitCommitID == "" {
		return entities.UnknownBuildStatus(), fmt.Errorf(
			"%w: status document at %s misses appBuild or gitCommitId",
			entities.ErrRemoteUnavailable, locator,
		)
	}

	commitTime := decoded.GitCommitTime
	if commitTime == "" {
		commitTime = entities.Unknown
	}
	return entities.NewBuildStatus(decoded.AppBuild, decoded.GitCommitID, commitTime), nil
}

// HTTPBaseVersionsRepository reads the base versions summary of a release environment.
type HTTPBaseVersionsRepository struct {
	httpClient *http.Client
}

var _ repositories.BaseVersionsRepository = (*HTTPBaseVersionsRepository)(nil)

// NewHTTPBaseVersionsRepository creates a base versions reader. Requests are
// bounded by the caller's context.
func NewHTTPBaseVersionsRepository() *HTTPBaseVersionsRepository {
	return &HTTPBaseVersionsRepository{httpClient: &http.Client{}}
}

// GetBaseVersions fetches a JSON object mapping service names to base versions.
func (it *HTTPBaseVersionsRepository) GetBaseVersions(
	ctx context.Context,
	locator string,
) (map[string]string, error) {
	versions := make(map[string]string)
	if err := getJSON(ctx, it.httpClient, locator, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

func getJSON(ctx context.Context, client *http.Client, locator string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request for %s: %w", entities.ErrRemoteUnavailable, locator, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed for URL %s: %w", entities.ErrRemoteUnavailable, locator, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", entities.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf(
			"%w: non-success status code: %d for URL %s",
			entities.ErrRemoteUnavailable, resp.StatusCode, locator,
		)
	}

	if err = json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: unable to decode response from %s: %w", entities.ErrRemoteUnavailable, locator, err)
	}
	return nil
}
