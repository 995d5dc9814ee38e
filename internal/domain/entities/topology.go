package entities

import (
	"fmt"
	"strings"
)

// EnvironmentKind classifies an environment by the branch it tracks.
type EnvironmentKind string

const (
	// Development environments track the unstable branch and use "dev-" tags.
	Development EnvironmentKind = "development"
	// Release environments track a numbered branch and use "release-" tags.
	Release EnvironmentKind = "release"
)

const (
	DevTagPrefix          = "dev-"
	ReleaseTagPrefix      = "release-"
	DefaultUnstableBranch = "devel"
)

// Environment is one deployment target, such as "dev" or "prod".
type Environment struct {
	Name            string
	Kind            EnvironmentKind
	TagPrefix       string
	BaseVersionsURL string
}

// IsRelease reports whether the environment tracks a numbered release branch.
func (e Environment) IsRelease() bool {
	return e.Kind == Release
}

// EnvBinding locates a service inside one environment.
type EnvBinding struct {
	Environment            string
	StatusEndpoint         string
	BuildSystemURLTemplate string
}

// Service is a deployable unit with its repository and per-environment bindings.
type Service struct {
	Name          string
	Repository    Repository
	HasChangeLog  bool
	ChangeLogPath string
	Bindings      map[string]EnvBinding
}

// Binding returns the service binding for env.
func (s Service) Binding(env string) (EnvBinding, bool) {
	binding, ok := s.Bindings[env]
	return binding, ok
}

// Topology is the read-only registry of services and environments. It is built
// once from the settings and shared by every run.
type Topology struct {
	Environments   []Environment
	Services       []Service
	UnstableBranch string
}

// ServiceNames returns the service names in configured order.
func (t *Topology) ServiceNames() []string {
	names := make([]string, 0, len(t.Services))
	for _, s := range t.Services {
		names = append(names, s.Name)
	}
	return names
}

// ServicesWithChangeLog returns the services that track a database change-log.
func (t *Topology) ServicesWithChangeLog() []Service {
	var result []Service
	for _, s := range t.Services {
		if s.HasChangeLog {
			result = append(result, s)
		}
	}
	return result
}

// Environment looks up an environment by name.
func (t *Topology) Environment(name string) (Environment, bool) {
	for _, env := range t.Environments {
		if env.Name == name {
			return env, true
		}
	}
	return Environment{}, false
}

// BaseBranch derives the branch whose merged pull requests describe what a
// build in env contains. Development environments always map to the unstable
// branch; release builds map to their "major.minor.0" branch, e.g.
// "release-1.2.7" -> "1.2.0".
func (t *Topology) BaseBranch(env Environment, build string) (string, error) {
	if !env.IsRelease() {
		if t.UnstableBranch == "" {
			return DefaultUnstableBranch, nil
		}
		return t.UnstableBranch, nil
	}

	if build == "" || build == Unknown {
		return "", fmt.Errorf("%w: environment %q", ErrMissingBuildVersion, env.Name)
	}

	canonical, err := ParseVersion(strings.TrimPrefix(build, env.TagPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedVersion, build)
	}
	return minorBranch(canonical), nil
}
