// Package config loads the bridge configuration: which Azure DevOps
// organization and project to talk to, and the token to do it with.
//
// Precedence (highest to lowest):
//  1. Environment variables (ADO_ORGANIZATION, ADO_PROJECT, ADO_PAT, ...)
//  2. YAML config file (~/.config/azdo-mcp/config.yaml)
//
// Missing required values are a startup failure; nothing here is checked
// per-request.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ADO_"

// Config holds the three required values plus optional overrides.
type Config struct {
	// Organization is the Azure DevOps organization name (the {org} in
	// https://dev.azure.com/{org}).
	Organization string `koanf:"organization"`
	// Project is the project all work item ids are resolved against.
	Project string `koanf:"project"`
	// PAT is the personal access token used for basic auth.
	PAT Secret `koanf:"pat"`
	// BaseURL overrides the organization URL entirely, for on-prem
	// collections. Optional.
	BaseURL string `koanf:"base_url"`
	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
}

// DefaultPath returns the default YAML config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "azdo-mcp", "config.yaml"), nil
}

// Load reads the YAML file at configPath (default path when empty, and a
// missing file is fine), then overrides with ADO_* environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		var err error
		configPath, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if content, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	// ADO_ORGANIZATION -> organization, ADO_BASE_URL -> base_url, etc.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{LogLevel: "info"}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Validate reports every missing required value at once, naming the
// environment variables that would supply them.
func (c *Config) Validate() error {
	var missing []string
	if c.Organization == "" && c.BaseURL == "" {
		missing = append(missing, "ADO_ORGANIZATION")
	}
	if c.Project == "" {
		missing = append(missing, "ADO_PROJECT")
	}
	if !c.PAT.IsSet() {
		missing = append(missing, "ADO_PAT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s (set the environment variables or add them to the config file)", strings.Join(missing, ", "))
	}
	return nil
}

// OrganizationURL returns the base URL all REST calls are issued against.
func (c *Config) OrganizationURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return "https://dev.azure.com/" + c.Organization
}
