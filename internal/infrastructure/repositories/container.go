package repositories

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/envtracker/internal/domain/repositories"
	adoRepo "github.com/rios0rios0/envtracker/internal/infrastructure/repositories/azuredevops"
	bbRepo "github.com/rios0rios0/envtracker/internal/infrastructure/repositories/bitbucket"
	ghRepo "github.com/rios0rios0/envtracker/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/envtracker/internal/infrastructure/repositories/gitlab"
	gitRepo "github.com/rios0rios0/envtracker/internal/infrastructure/repositories/gitlocal"
	"github.com/rios0rios0/envtracker/internal/infrastructure/repositories/status"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register provider registry with all provider factories
	if err := container.Provide(func() *ProviderRegistry {
		reg := NewProviderRegistry()
		reg.Register("bitbucket", bbRepo.NewSourceControlRepository)
		reg.Register("github", ghRepo.NewSourceControlRepository)
		reg.Register("gitlab", glRepo.NewSourceControlRepository)
		reg.Register("azuredevops", adoRepo.NewSourceControlRepository)
		reg.Register("git", gitRepo.NewSourceControlRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(func() prometheus.Registerer {
		return prometheus.DefaultRegisterer
	}); err != nil {
		return err
	}

	if err := container.Provide(func() prometheus.Gatherer {
		return prometheus.DefaultGatherer
	}); err != nil {
		return err
	}

	if err := container.Provide(NewSourceControlPool); err != nil {
		return err
	}

	// Bind status readers to their domain interfaces
	if err := container.Provide(func() domainRepos.DeploymentStatusRepository {
		return status.NewHTTPDeploymentStatusRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.BaseVersionsRepository {
		return status.NewHTTPBaseVersionsRepository()
	}); err != nil {
		return err
	}

	return nil
}
