package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/envtracker/internal/infrastructure/repositories"
)

// ChangeLogDiff is the interface for the database change-log diff command.
type ChangeLogDiff interface {
	Execute(
		ctx context.Context,
		settings *entities.Settings,
		releaseBranchOrVersion string,
	) (map[string]entities.ServiceDiff, error)
}

// ChangeLogDiffCommand compares the migration sequence of the unstable branch
// with the one of a release branch for every service tracking a change-log.
type ChangeLogDiffCommand struct {
	pool *infraRepos.SourceControlPool
}

// NewChangeLogDiffCommand creates a new ChangeLogDiffCommand.
func NewChangeLogDiffCommand(pool *infraRepos.SourceControlPool) *ChangeLogDiffCommand {
	return &ChangeLogDiffCommand{pool: pool}
}

// Execute diffs every change-log service. A service whose documents cannot be
// fetched or parsed gets its error recorded in its ServiceDiff.
func (it *ChangeLogDiffCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	releaseBranchOrVersion string,
) (map[string]entities.ServiceDiff, error) {
	topology := settings.Topology()
	develBranch, err := topology.BaseBranch(entities.Environment{Kind: entities.Development}, "")
	if err != nil {
		return nil, err
	}
	releaseBranch := entities.ReleaseBranch(releaseBranchOrVersion)
	services := topology.ServicesWithChangeLog()

	providers := make([]repositories.SourceControlRepository, len(services))
	for i, service := range services {
		provider, poolErr := it.pool.For(settings, service.Repository.Provider)
		if poolErr != nil {
			return nil, fmt.Errorf("failed to resolve provider for service %q: %w", service.Name, poolErr)
		}
		providers[i] = provider
	}

	logger.Infof("Diffing change-logs of %d services: %s vs %s", len(services), develBranch, releaseBranch)

	var mu sync.Mutex
	diffs := make(map[string]entities.ServiceDiff, len(services))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(settings.Workers())
	for i, service := range services {
		group.Go(func() error {
			diff := it.diffService(groupCtx, providers[i], service, develBranch, releaseBranch, settings.RequestTimeout())
			mu.Lock()
			diffs[service.Name] = diff
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return diffs, nil
}

func (it *ChangeLogDiffCommand) diffService(
	ctx context.Context,
	provider repositories.SourceControlRepository,
	service entities.Service,
	develBranch, releaseBranch string,
	timeout time.Duration,
) entities.ServiceDiff {
	diff := entities.ServiceDiff{Service: service.Name}

	devel, err := it.migrations(ctx, provider, service, develBranch, timeout)
	if err != nil {
		return it.fail(diff, err)
	}
	release, err := it.migrations(ctx, provider, service, releaseBranch, timeout)
	if err != nil {
		return it.fail(diff, err)
	}

	diff.Rows = entities.DiffMigrations(devel, release)
	return diff
}

func (it *ChangeLogDiffCommand) migrations(
	ctx context.Context,
	provider repositories.SourceControlRepository,
	service entities.Service,
	branch string,
	timeout time.Duration,
) ([]string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	document, err := provider.FetchFile(callCtx, service.Repository, branch, service.ChangeLogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch change-log from %q: %w", branch, err)
	}

	entries, err := entities.ParseChangeLog(document)
	if err != nil {
		return nil, fmt.Errorf("failed to read change-log from %q: %w", branch, err)
	}
	return entries, nil
}

func (it *ChangeLogDiffCommand) fail(diff entities.ServiceDiff, err error) entities.ServiceDiff {
	logger.WithField("service", diff.Service).Errorf("Failed to diff change-logs: %v", err)
	diff.Error = err.Error()
	return diff
}
