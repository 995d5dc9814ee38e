package repositories

import (
	"context"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// DeploymentStatusRepository reads what a running service reports about its build.
type DeploymentStatusRepository interface {
	GetStatus(ctx context.Context, locator string) (entities.BuildStatus, error)
}

// BaseVersionsRepository reads the per-service base versions summary published
// for a release environment.
type BaseVersionsRepository interface {
	GetBaseVersions(ctx context.Context, locator string) (map[string]string, error)
}
