// Package config loads the YAML-driven configuration factory: job
// mappings, CI backend configs, cache directory, and worker-pool width.
// Parsing follows the same gopkg.in/yaml.v3 approach the teacher package
// uses for its own on-disk metadata.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrustedTeam is a "org/team" or "host/org/team" entry from a job mapping's
// trusted_teams list (spec §4.6 "Label Policy").
type TrustedTeam struct {
	Host string // empty means "any host" / the default github.com
	Org  string
	Team string
}

// RepositoryMapping associates a repository (owner/name) with the CI team
// and backend configuration that replication should target for it.
type RepositoryMapping struct {
	Owner                     string   `yaml:"owner"`
	Name                      string   `yaml:"name"`
	CIConfigName              string   `yaml:"ciConfigName"`
	Team                      string   `yaml:"team"`
	TrustedTeams              []string `yaml:"trustedTeams"`
	CleanupEnabled            bool     `yaml:"cleanupEnabled"`
	RemovePipelinesFilterGlob string   `yaml:"removePipelinesFilterGlob"`
}

// CIBackendConfig describes how to reach one named CI backend instance.
type CIBackendConfig struct {
	Name                string `yaml:"name"`
	BaseURL             string `yaml:"baseURL"`
	Team                string `yaml:"team"`
	UnpauseNewPipelines bool   `yaml:"unpauseNewPipelines"`
	UnpausePipelines    bool   `yaml:"unpausePipelines"`
	ExposePipelines     bool   `yaml:"exposePipelines"`
	ReorderPipelines    bool   `yaml:"reorderPipelines"`
}

// OCIRegistryConfig describes a component-descriptor OCI registry and the
// credentials environment variable to use when talking to it.
type OCIRegistryConfig struct {
	BaseURL        string `yaml:"baseURL"`
	CredentialsEnv string `yaml:"credentialsEnv"`
	PlainHTTP      bool   `yaml:"plainHTTP"`
}

// RemoteLookupServiceConfig describes the "remote delivery service" layer
// of the component-descriptor lookup composite (spec §4.1).
type RemoteLookupServiceConfig struct {
	BaseURL string `yaml:"baseURL"`
}

// Config is the top-level configuration factory output. It is deliberately
// flat (no nested "factory" indirection) since this repo has exactly one
// consumer of each section, unlike the multi-tenant config factory the
// original Python implementation supported.
type Config struct {
	CacheDir            string                     `yaml:"cacheDir"`
	WorkerPoolWidth     int                        `yaml:"workerPoolWidth"`
	InMemoryCacheSize   int                        `yaml:"inMemoryCacheSize"`
	RepositoryMappings  []RepositoryMapping        `yaml:"repositoryMappings"`
	CIBackends          []CIBackendConfig          `yaml:"ciBackends"`
	OCIRegistries       []OCIRegistryConfig        `yaml:"ociRegistries"`
	RemoteLookupService *RemoteLookupServiceConfig `yaml:"remoteLookupService"`
	WebhookListenAddr   string                     `yaml:"webhookListenAddr"`
	DefaultHostname     string                     `yaml:"defaultHostname"`
	MailSMTPAddr        string                     `yaml:"mailSMTPAddr"`
	MailFrom            string                     `yaml:"mailFrom"`
	TemplateIncludeDir  string                     `yaml:"templateIncludeDir"`
	ToolingVersion      string                     `yaml:"toolingVersion"`
}

// defaults matches the values spec.md calls out explicitly: worker pool
// width 16 (§5 "Bounded worker pool"), in-memory cache size 2048
// (§3 "Lifecycles").
func (c *Config) applyDefaults() {
	if c.WorkerPoolWidth == 0 {
		c.WorkerPoolWidth = 16
	}
	if c.InMemoryCacheSize == 0 {
		c.InMemoryCacheSize = 2048
	}
	if c.DefaultHostname == "" {
		c.DefaultHostname = "github.com"
	}
}

// Load reads and parses a YAML configuration file from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()

	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("config %s: cacheDir is required", path)
	}

	return &cfg, nil
}

// CIBackendByName returns the named backend config, or (zero, false).
func (c *Config) CIBackendByName(name string) (CIBackendConfig, bool) {
	for _, b := range c.CIBackends {
		if b.Name == name {
			return b, true
		}
	}
	return CIBackendConfig{}, false
}

// MappingForRepository returns the first repository mapping matching
// owner/name, or (zero, false).
func (c *Config) MappingForRepository(owner, name string) (RepositoryMapping, bool) {
	for _, m := range c.RepositoryMappings {
		if m.Owner == owner && m.Name == name {
			return m, true
		}
	}
	return RepositoryMapping{}, false
}

// CIBackendNames returns every configured CI backend's name, used by
// WebhookDispatcher to sweep all backends for git-resource checks after a
// push (spec §4.6 "for every matching git-type resource across all CI
// clients, trigger a resource check").
func (c *Config) CIBackendNames() []string {
	names := make([]string, 0, len(c.CIBackends))
	for _, b := range c.CIBackends {
		names = append(names, b.Name)
	}
	return names
}
