package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

// ResolveInput is everything the resolver needs for one (environment, service) cell.
type ResolveInput struct {
	Topology        *entities.Topology
	Environment     entities.Environment
	Service         entities.Service
	Status          entities.BuildStatus
	IssueTrackerURL string
}

// DeploymentStatusResolver finds which merged pull requests are part of the
// live build of a service by walking its merge history backwards.
type DeploymentStatusResolver struct {
	timeout time.Duration
}

// NewDeploymentStatusResolver creates a resolver applying timeout to every remote call.
func NewDeploymentStatusResolver(timeout time.Duration) *DeploymentStatusResolver {
	if timeout <= 0 {
		timeout = entities.DefaultTimeout
	}
	return &DeploymentStatusResolver{timeout: timeout}
}

// Resolve builds the reconciliation row for one cell. It never fails: an
// unknown live status yields an empty row, and remote failures end the walk
// with a single failure marker.
func (it *DeploymentStatusResolver) Resolve(
	ctx context.Context,
	provider repositories.SourceControlRepository,
	input ResolveInput,
) entities.ReconciliationRow {
	row := entities.NewReconciliationRow(input.Service.Name, input.Status)
	fields := logger.Fields{"env": input.Environment.Name, "service": input.Service.Name}

	if !input.Status.Known {
		logger.WithFields(fields).Warn("Live build status unknown, skipping history walk")
		return row
	}

	branch, err := input.Topology.BaseBranch(input.Environment, input.Status.AppBuild)
	if err != nil {
		logger.WithFields(fields).Errorf("Failed to derive base branch: %v", err)
		row.Error = err.Error()
		return row
	}

	page, err := it.searchPullRequests(ctx, provider, input.Service.Repository, branch)
	if err != nil {
		return it.fail(row, fields, err)
	}

	tags, err := it.listTags(ctx, provider, input.Service.Repository, input.Environment.TagPrefix)
	if err != nil {
		return it.fail(row, fields, err)
	}

	result := entities.WalkPullRequests(page, entities.BuildCommitTagIndex(tags), input.Status.CommitID)
	row.Found = result.Found
	row.PullRequests = it.annotate(result.Records, input)

	logger.WithFields(fields).Infof(
		"branch=%s commit=%s found=%t pull_requests=%d",
		branch, input.Status.CommitID, row.Found, len(row.PullRequests),
	)
	return row
}

func (it *DeploymentStatusResolver) searchPullRequests(
	ctx context.Context,
	provider repositories.SourceControlRepository,
	repo entities.Repository,
	branch string,
) (entities.PullRequestPage, error) {
	callCtx, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()
	return provider.SearchMergedPullRequests(callCtx, repo, branch)
}

func (it *DeploymentStatusResolver) listTags(
	ctx context.Context,
	provider repositories.SourceControlRepository,
	repo entities.Repository,
	prefix string,
) ([]entities.Tag, error) {
	callCtx, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()
	return provider.ListTags(callCtx, repo, prefix)
}

// annotate adds issue references, build links for development environments
// and newest-first version lists for release environments.
func (it *DeploymentStatusResolver) annotate(
	records []entities.PullRequestRecord,
	input ResolveInput,
) []entities.PullRequestRecord {
	binding, _ := input.Service.Binding(input.Environment.Name)

	for i := range records {
		record := &records[i]
		record.Issues = entities.IssueRefs(record.Title, input.IssueTrackerURL)
		if record.AssociatedVersion == "" {
			continue
		}

		if !input.Environment.IsRelease() {
			record.Builds = entities.BuildLinks(
				binding.BuildSystemURLTemplate, input.Environment.TagPrefix, record.AssociatedVersion,
			)
			continue
		}

		if sorted, err := entities.SortVersions(strings.Split(record.AssociatedVersion, ",")); err == nil {
			record.AssociatedVersion = strings.Join(sorted, ",")
		}
	}
	return records
}

func (it *DeploymentStatusResolver) fail(
	row entities.ReconciliationRow,
	fields logger.Fields,
	err error,
) entities.ReconciliationRow {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, entities.ErrRemoteUnavailable) {
		err = errors.Join(entities.ErrRemoteUnavailable, err)
	}
	logger.WithFields(fields).Errorf("Unexpected error while walking pull requests: %v", err)

	row.Error = err.Error()
	row.PullRequests = append(row.PullRequests, entities.UnknownPullRequestRecord())
	return row
}
