//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"fmt"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// SpyProviderName is the provider name and type every built service points at.
const SpyProviderName = "spy"

// SettingsBuilder helps create settings with one development ("dev") and one
// release ("prod") environment. Status endpoints follow "<env>/<service>/status".
type SettingsBuilder struct {
	*testkit.BaseBuilder
	unstableBranch  string
	issueTrackerURL string
	concurrency     int
	baseVersionsURL string
	services        []entities.ServiceSettings
}

// NewSettingsBuilder creates a new settings builder with sensible defaults.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{
		BaseBuilder:     testkit.NewBaseBuilder(),
		unstableBranch:  entities.DefaultUnstableBranch,
		concurrency:     4,
		baseVersionsURL: "prod/base-versions",
	}
}

// StatusLocator returns the status endpoint bound to service in env.
func StatusLocator(env, service string) string {
	return fmt.Sprintf("%s/%s/status", env, service)
}

// WithService adds a service; an empty changeLog means it has none.
func (b *SettingsBuilder) WithService(name, changeLog string) *SettingsBuilder {
	b.services = append(b.services, entities.ServiceSettings{
		Name: name,
		Repository: entities.RepositorySettings{
			Provider:     SpyProviderName,
			Organization: "acme",
			Name:         name,
		},
		ChangeLog: changeLog,
		Bindings: []entities.BindingSettings{
			{
				Environment:    "dev",
				StatusURL:      StatusLocator("dev", name),
				BuildSystemURL: "https://ci.example.com/" + name + "/{}",
			},
			{Environment: "prod", StatusURL: StatusLocator("prod", name)},
		},
	})
	return b
}

// WithUnstableBranch sets the development branch name.
func (b *SettingsBuilder) WithUnstableBranch(branch string) *SettingsBuilder {
	b.unstableBranch = branch
	return b
}

// WithIssueTrackerURL sets the issue tracker browse URL.
func (b *SettingsBuilder) WithIssueTrackerURL(url string) *SettingsBuilder {
	b.issueTrackerURL = url
	return b
}

// WithConcurrency sets the worker bound.
func (b *SettingsBuilder) WithConcurrency(concurrency int) *SettingsBuilder {
	b.concurrency = concurrency
	return b
}

// WithBaseVersionsURL sets the base versions locator of "prod"; empty disables it.
func (b *SettingsBuilder) WithBaseVersionsURL(url string) *SettingsBuilder {
	b.baseVersionsURL = url
	return b
}

// Build creates the settings (satisfies testkit.Builder interface).
func (b *SettingsBuilder) Build() interface{} {
	return b.BuildSettings()
}

// BuildSettings creates the settings with a concrete return type.
func (b *SettingsBuilder) BuildSettings() *entities.Settings {
	services := make([]entities.ServiceSettings, len(b.services))
	copy(services, b.services)

	return &entities.Settings{
		UnstableBranch:  b.unstableBranch,
		Timeout:         "1s",
		Concurrency:     b.concurrency,
		IssueTrackerURL: b.issueTrackerURL,
		Providers: []entities.ProviderSettings{
			{Name: SpyProviderName, Type: SpyProviderName},
		},
		Environments: []entities.EnvironmentSettings{
			{Name: "dev", Kind: string(entities.Development), TagPrefix: entities.DevTagPrefix},
			{
				Name:            "prod",
				Kind:            string(entities.Release),
				TagPrefix:       entities.ReleaseTagPrefix,
				BaseVersionsURL: b.baseVersionsURL,
			},
		},
		Services: services,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *SettingsBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.unstableBranch = entities.DefaultUnstableBranch
	b.issueTrackerURL = ""
	b.concurrency = 4
	b.baseVersionsURL = "prod/base-versions"
	b.services = nil
	return b
}

// Clone creates a deep copy of the SettingsBuilder.
func (b *SettingsBuilder) Clone() testkit.Builder {
	services := make([]entities.ServiceSettings, len(b.services))
	copy(services, b.services)
	return &SettingsBuilder{
		BaseBuilder:     b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		unstableBranch:  b.unstableBranch,
		issueTrackerURL: b.issueTrackerURL,
		concurrency:     b.concurrency,
		baseVersionsURL: b.baseVersionsURL,
		services:        services,
	}
}
