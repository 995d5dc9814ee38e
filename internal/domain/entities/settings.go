package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultCacheTTL    = 300 * time.Second
	DefaultCacheSize   = 1024
	DefaultConcurrency = 8
)

// Settings is the top-level configuration of envtracker.
type Settings struct {
	UnstableBranch  string                `yaml:"unstable_branch"   hcl:"unstable_branch,optional"`
	Timeout         string                `yaml:"timeout"           hcl:"timeout,optional"`
	Concurrency     int                   `yaml:"concurrency"       hcl:"concurrency,optional"`
	IssueTrackerURL string                `yaml:"issue_tracker_url" hcl:"issue_tracker_url,optional"`
	CachedReportURL string                `yaml:"cached_report_url" hcl:"cached_report_url,optional"`
	Cache           *CacheSettings        `yaml:"cache"             hcl:"cache,block"`
	Providers       []ProviderSettings    `yaml:"providers"         hcl:"provider,block"`
	Environments    []EnvironmentSettings `yaml:"environments"      hcl:"environment,block"`
	Services        []ServiceSettings     `yaml:"services"          hcl:"service,block"`
}

// CacheSettings tunes the remote lookup cache.
type CacheSettings struct {
	TTL  string `yaml:"ttl"  hcl:"ttl,optional"`
	Size int    `yaml:"size" hcl:"size,optional"`
}

// ProviderSettings describes one source-control host account.
type ProviderSettings struct {
	Name         string `yaml:"name"         hcl:"name,label"`
	Type         string `yaml:"type"         hcl:"type"`                  // "bitbucket", "github", "gitlab", "azuredevops", "git"
	Token        string `yaml:"token"        hcl:"token,optional"`        // Inline, ${ENV_VAR}, or file path
	Username     string `yaml:"username"     hcl:"username,optional"`     // Bitbucket app-password user
	BaseURL      string `yaml:"base_url"     hcl:"base_url,optional"`     // Self-hosted API endpoint
	Organization string `yaml:"organization" hcl:"organization,optional"` // Default workspace/owner/group
}

// EnvironmentSettings describes one deployment environment.
type EnvironmentSettings struct {
	Name            string `yaml:"name"              hcl:"name,label"`
	Kind            string `yaml:"kind"              hcl:"kind"`
	TagPrefix       string `yaml:"tag_prefix"        hcl:"tag_prefix,optional"`
	BaseVersionsURL string `yaml:"base_versions_url" hcl:"base_versions_url,optional"`
}

// ServiceSettings describes one service and where it runs.
type ServiceSettings struct {
	Name       string             `yaml:"name"        hcl:"name,label"`
	Repository RepositorySettings `yaml:"repository"  hcl:"repository,block"`
	ChangeLog  string             `yaml:"change_log"  hcl:"change_log,optional"`
	Bindings   []BindingSettings  `yaml:"environments" hcl:"environment,block"`
}

// RepositorySettings points at the service's source-control repository.
type RepositorySettings struct {
	Provider     string `yaml:"provider"     hcl:"provider"`
	Organization string `yaml:"organization" hcl:"organization,optional"`
	Project      string `yaml:"project"      hcl:"project,optional"`
	Name         string `yaml:"name"         hcl:"name,optional"`
	Path         string `yaml:"path"         hcl:"path,optional"`
}

// BindingSettings locates a service inside one environment.
type BindingSettings struct {
	Environment    string `yaml:"name"             hcl:"name,label"`
	StatusURL      string `yaml:"status_url"       hcl:"status_url"`
	BuildSystemURL string `yaml:"build_system_url" hcl:"build_system_url,optional"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads, parses and validates a YAML or HCL configuration file.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		if decodeErr := hclsimple.Decode(path, data, hclEvalContext(), &settings); decodeErr != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", decodeErr)
		}
	default:
		if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
		}
	}

	for i := range settings.Providers {
		settings.Providers[i].Token = resolveToken(settings.Providers[i].Token)
		settings.Providers[i].Username = resolveToken(settings.Providers[i].Username)
	}
	settings.applyDefaults()

	if validateErr := validate(&settings); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// hclEvalContext exposes the process environment to HCL files as "env.NAME".
func hclEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclIdentifier.MatchString(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": env}}
}

var hclIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".envtracker.yaml",
		".envtracker.yml",
		"envtracker.yaml",
		"envtracker.yml",
		"envtracker.hcl",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// RequestTimeout is the bound applied to every remote call.
func (s *Settings) RequestTimeout() time.Duration {
	return parseDuration(s.Timeout, DefaultTimeout)
}

// Workers bounds how many remote lookups run at the same time.
func (s *Settings) Workers() int {
	if s.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return s.Concurrency
}

// CacheTTL is how long remote lookups stay fresh.
func (s *Settings) CacheTTL() time.Duration {
	if s.Cache == nil {
		return DefaultCacheTTL
	}
	return parseDuration(s.Cache.TTL, DefaultCacheTTL)
}

// CacheSize bounds the number of entries kept per cached operation.
func (s *Settings) CacheSize() int {
	if s.Cache == nil || s.Cache.Size <= 0 {
		return DefaultCacheSize
	}
	return s.Cache.Size
}

// Provider returns the provider settings registered under name.
func (s *Settings) Provider(name string) (ProviderSettings, bool) {
	for _, p := range s.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderSettings{}, false
}

// Topology converts the settings into the immutable registry used by every run.
func (s *Settings) Topology() *Topology {
	topology := &Topology{UnstableBranch: s.UnstableBranch}

	for _, e := range s.Environments {
		topology.Environments = append(topology.Environments, Environment{
			Name:            e.Name,
			Kind:            EnvironmentKind(e.Kind),
			TagPrefix:       e.TagPrefix,
			BaseVersionsURL: e.BaseVersionsURL,
		})
	}

	for _, svc := range s.Services {
		organization := svc.Repository.Organization
		if organization == "" {
			if provider, ok := s.Provider(svc.Repository.Provider); ok {
				organization = provider.Organization
			}
		}

		bindings := make(map[string]EnvBinding, len(svc.Bindings))
		for _, b := range svc.Bindings {
			bindings[b.Environment] = EnvBinding{
				Environment:            b.Environment,
				StatusEndpoint:         b.StatusURL,
				BuildSystemURLTemplate: b.BuildSystemURL,
			}
		}

		topology.Services = append(topology.Services, Service{
			Name: svc.Name,
			Repository: Repository{
				Provider:     svc.Repository.Provider,
				Organization: organization,
				Project:      svc.Repository.Project,
				Name:         svc.Repository.Name,
				Path:         svc.Repository.Path,
			},
			HasChangeLog:  svc.ChangeLog != "",
			ChangeLogPath: svc.ChangeLog,
			Bindings:      bindings,
		})
	}

	return topology
}

func (s *Settings) applyDefaults() {
	if s.UnstableBranch == "" {
		s.UnstableBranch = DefaultUnstableBranch
	}
	if s.Concurrency <= 0 {
		s.Concurrency = DefaultConcurrency
	}
	for i := range s.Environments {
		env := &s.Environments[i]
		if env.TagPrefix != "" {
			continue
		}
		if EnvironmentKind(env.Kind) == Release {
			env.TagPrefix = ReleaseTagPrefix
		} else {
			env.TagPrefix = DevTagPrefix
		}
	}
	for i := range s.Services {
		if s.Services[i].Repository.Name == "" {
			s.Services[i].Repository.Name = s.Services[i].Name
		}
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Warnf("Invalid duration %q, using %s", raw, fallback)
		return fallback
	}
	return d
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	// Expand ${ENV_VAR} references
	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the token from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for required configuration values.
func validate(settings *Settings) error {
	if err := validateProviders(settings); err != nil {
		return err
	}
	if err := validateEnvironments(settings); err != nil {
		return err
	}
	return validateServices(settings)
}

func validateProviders(settings *Settings) error {
	seen := make(map[string]bool, len(settings.Providers))
	for i, p := range settings.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("providers[%d].name %q is duplicated", i, p.Name)
		}
		seen[p.Name] = true
		if p.Type == "" {
			return fmt.Errorf("providers[%d].type is required", i)
		}
	}
	return nil
}

func validateEnvironments(settings *Settings) error {
	if len(settings.Environments) == 0 {
		return errors.New("at least one environment must be configured")
	}

	seen := make(map[string]bool, len(settings.Environments))
	for i, env := range settings.Environments {
		if env.Name == "" {
			return fmt.Errorf("environments[%d].name is required", i)
		}
		if seen[env.Name] {
			return fmt.Errorf("environments[%d].name %q is duplicated", i, env.Name)
		}
		seen[env.Name] = true

		kind := EnvironmentKind(env.Kind)
		if kind != Development && kind != Release {
			return fmt.Errorf(
				"environments[%d].kind must be %q or %q, got %q",
				i, Development, Release, env.Kind,
			)
		}
	}
	return nil
}

func validateServices(settings *Settings) error {
	if len(settings.Services) == 0 {
		return errors.New("at least one service must be configured")
	}

	seen := make(map[string]bool, len(settings.Services))
	for i, svc := range settings.Services {
		if svc.Name == "" {
			return fmt.Errorf("services[%d].name is required", i)
		}
		if seen[svc.Name] {
			return fmt.Errorf("services[%d].name %q is duplicated", i, svc.Name)
		}
		seen[svc.Name] = true

		if _, ok := settings.Provider(svc.Repository.Provider); !ok {
			return fmt.Errorf(
				"services[%d].repository.provider %q is not a configured provider",
				i, svc.Repository.Provider,
			)
		}

		bound := make(map[string]BindingSettings, len(svc.Bindings))
		for _, b := range svc.Bindings {
			bound[b.Environment] = b
		}
		for _, env := range settings.Environments {
			binding, ok := bound[env.Name]
			if !ok {
				return fmt.Errorf("services[%d].environments.%s is required", i, env.Name)
			}
			if binding.StatusURL == "" {
				return fmt.Errorf("services[%d].environments.%s.status_url is required", i, env.Name)
			}
		}
	}
	return nil
}
