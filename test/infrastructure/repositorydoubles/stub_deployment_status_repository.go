//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

// StubDeploymentStatusRepository answers GetStatus from a fixed table keyed by
// locator. Unknown locators fail.
type StubDeploymentStatusRepository struct {
	Statuses map[string]entities.BuildStatus
	Errs     map[string]error
}

var _ repositories.DeploymentStatusRepository = (*StubDeploymentStatusRepository)(nil)

func (s *StubDeploymentStatusRepository) GetStatus(
	_ context.Context,
	locator string,
) (entities.BuildStatus, error) {
	if err, ok := s.Errs[locator]; ok {
		return entities.BuildStatus{}, err
	}
	if status, ok := s.Statuses[locator]; ok {
		return status, nil
	}
	return entities.BuildStatus{}, fmt.Errorf("%w: no status for %s", entities.ErrRemoteUnavailable, locator)
}

// StubBaseVersionsRepository answers GetBaseVersions from a fixed table.
type StubBaseVersionsRepository struct {
	Versions map[string]map[string]string
	Err      error
}

var _ repositories.BaseVersionsRepository = (*StubBaseVersionsRepository)(nil)

func (s *StubBaseVersionsRepository) GetBaseVersions(
	_ context.Context,
	locator string,
) (map[string]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	versions, ok := s.Versions[locator]
	if !ok {
		return nil, fmt.Errorf("%w: no base versions at %s", entities.ErrRemoteUnavailable, locator)
	}
	return versions, nil
}
