package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/envtracker/internal/infrastructure/repositories"
)

// Report is the interface for the reconciliation report command.
type Report interface {
	Execute(ctx context.Context, settings *entities.Settings) (*entities.Report, error)
}

// ReportCommand builds the reconciliation report: live build per
// (environment, service), the merged pull requests it contains and the
// release base versions.
type ReportCommand struct {
	pool         *infraRepos.SourceControlPool
	statuses     repositories.DeploymentStatusRepository
	baseVersions repositories.BaseVersionsRepository
	now          func() time.Time
}

// NewReportCommand creates a new ReportCommand.
func NewReportCommand(
	pool *infraRepos.SourceControlPool,
	statuses repositories.DeploymentStatusRepository,
	baseVersions repositories.BaseVersionsRepository,
) *ReportCommand {
	return &ReportCommand{
		pool:         pool,
		statuses:     statuses,
		baseVersions: baseVersions,
		now:          time.Now,
	}
}

// Execute runs one reconciliation. Per-row failures stay inside the rows;
// configuration problems abort the run. Malformed live builds still return the
// report, together with an error wrapping ErrMalformedVersion.
func (it *ReportCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
) (*entities.Report, error) {
	topology := settings.Topology()
	timeout := settings.RequestTimeout()

	providers := make([]repositories.SourceControlRepository, len(topology.Services))
	for i, service := range topology.Services {
		provider, err := it.pool.For(settings, service.Repository.Provider)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve provider for service %q: %w", service.Name, err)
		}
		providers[i] = provider
	}

	runID := uuid.NewString()
	logger.WithField("run", runID).Infof(
		"Reconciling %d services across %d environments",
		len(topology.Services), len(topology.Environments),
	)

	statuses, baseVersions := it.fetchLiveState(ctx, settings, topology, timeout)
	rows := it.resolveRows(ctx, settings, topology, providers, statuses)

	report := &entities.Report{
		RunID:        runID,
		GeneratedAt:  it.now().UTC(),
		Services:     topology.ServiceNames(),
		Environments: make([]entities.EnvironmentReport, len(topology.Environments)),
	}

	var errs []error
	for i, env := range topology.Environments {
		envReport := entities.EnvironmentReport{Name: env.Name, Kind: env.Kind, Rows: rows[i]}
		if env.IsRelease() {
			for j := range envReport.Rows {
				envReport.Rows[j].BaseVersion = baseVersionOf(baseVersions[i], envReport.Rows[j].Service)
			}

			highest, err := highestKnownVersion(statuses[i])
			if err != nil {
				logger.WithField("env", env.Name).Errorf("Failed to order live builds: %v", err)
				errs = append(errs, fmt.Errorf("environment %q: %w", env.Name, err))
			}
			envReport.HighestVersion = highest
		}
		report.Environments[i] = envReport
	}

	return report, errors.Join(errs...)
}

// fetchLiveState reads the live build of every (environment, service) and the
// base versions summary of every release environment concurrently. Results
// land in pre-sized slots so order follows the topology.
func (it *ReportCommand) fetchLiveState(
	ctx context.Context,
	settings *entities.Settings,
	topology *entities.Topology,
	timeout time.Duration,
) ([][]entities.BuildStatus, []map[string]string) {
	statuses := make([][]entities.BuildStatus, len(topology.Environments))
	baseVersions := make([]map[string]string, len(topology.Environments))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(settings.Workers())

	for i, env := range topology.Environments {
		statuses[i] = make([]entities.BuildStatus, len(topology.Services))
		for j, service := range topology.Services {
			binding, _ := service.Binding(env.Name)
			group.Go(func() error {
				statuses[i][j] = it.fetchStatus(groupCtx, env, service, binding.StatusEndpoint, timeout)
				return nil
			})
		}

		if env.IsRelease() && env.BaseVersionsURL != "" {
			group.Go(func() error {
				baseVersions[i] = it.fetchBaseVersions(groupCtx, env, timeout)
				return nil
			})
		}
	}

	_ = group.Wait()
	return statuses, baseVersions
}

func (it *ReportCommand) fetchStatus(
	ctx context.Context,
	env entities.Environment,
	service entities.Service,
	locator string,
	timeout time.Duration,
) entities.BuildStatus {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status, err := it.statuses.GetStatus(callCtx, locator)
	if err != nil {
		logger.WithFields(logger.Fields{"env": env.Name, "service": service.Name}).
			Warnf("Failed to fetch live build status: %v", err)
		return entities.UnknownBuildStatus()
	}
	return status
}

func (it *ReportCommand) fetchBaseVersions(
	ctx context.Context,
	env entities.Environment,
	timeout time.Duration,
) map[string]string {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	versions, err := it.baseVersions.GetBaseVersions(callCtx, env.BaseVersionsURL)
	if err != nil {
		logger.WithField("env", env.Name).Warnf("Failed to fetch base versions: %v", err)
		return nil
	}
	return versions
}

func (it *ReportCommand) resolveRows(
	ctx context.Context,
	settings *entities.Settings,
	topology *entities.Topology,
	providers []repositories.SourceControlRepository,
	statuses [][]entities.BuildStatus,
) [][]entities.ReconciliationRow {
	resolver := NewDeploymentStatusResolver(settings.RequestTimeout())
	rows := make([][]entities.ReconciliationRow, len(topology.Environments))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(settings.Workers())

	for i, env := range topology.Environments {
		rows[i] = make([]entities.ReconciliationRow, len(topology.Services))
		for j, service := range topology.Services {
			group.Go(func() error {
				rows[i][j] = resolver.Resolve(groupCtx, providers[j], ResolveInput{
					Topology:        topology,
					Environment:     env,
					Service:         service,
					Status:          statuses[i][j],
					IssueTrackerURL: settings.IssueTrackerURL,
				})
				return nil
			})
		}
	}

	_ = group.Wait()
	return rows
}

func baseVersionOf(versions map[string]string, service string) string {
	if version, ok := versions[service]; ok && version != "" {
		return version
	}
	return entities.Unknown
}

// highestKnownVersion orders the known live builds of one environment.
func highestKnownVersion(statuses []entities.BuildStatus) (string, error) {
	builds := lo.FilterMap(statuses, func(status entities.BuildStatus, _ int) (string, bool) {
		return status.AppBuild, status.Known
	})
	if len(builds) == 0 {
		return entities.Unknown, nil
	}

	highest, err := entities.HighestVersion(builds)
	if err != nil {
		return entities.Unknown, err
	}
	return highest, nil
}
