// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the roadmap generator configuration from the
// environment, with an optional roadmapgen.yaml providing defaults.
// Precedence: environment variables over file values over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up relative to the working directory.
const DefaultConfigFile = "roadmapgen.yaml"

// ErrMissingOrganization is returned when neither GITHUB_ORG nor ORGANIZATION
// is set and the config file does not name an organization.
var ErrMissingOrganization = errors.New("organization is required (set GITHUB_ORG or ORGANIZATION)")

// Config holds the full runtime configuration for one pipeline run.
type Config struct {
	Token         string
	Organization  string
	ProjectNumber int
	ReadmePath    string
	MaxItems      int
	ChartTitle    string
	GroupByEpic   bool
	DryRun        bool
	Verbose       bool
}

// fileConfig matches the shape of roadmapgen.yaml.
type fileConfig struct {
	Organization string `yaml:"organization"`
	Project      int    `yaml:"project"`
	Readme       string `yaml:"readme"`
	MaxItems     int    `yaml:"max_items"`
	Title        string `yaml:"title"`
}

// Load reads configuration from a .env file (if present), the process
// environment, and an optional YAML config file at path. An empty path means
// DefaultConfigFile; a missing file is not an error, a malformed one is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ProjectNumber: 1,
		ReadmePath:    "README.md",
		MaxItems:      50,
		ChartTitle:    "Project Roadmap",
		GroupByEpic:   true,
	}

	if path == "" {
		path = DefaultConfigFile
	}
	if err := applyFile(cfg, path); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if cfg.Organization == "" {
		return nil, ErrMissingOrganization
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Organization != "" {
		cfg.Organization = fc.Organization
	}
	if fc.Project > 0 {
		cfg.ProjectNumber = fc.Project
	}
	if fc.Readme != "" {
		cfg.ReadmePath = fc.Readme
	}
	if fc.MaxItems > 0 {
		cfg.MaxItems = fc.MaxItems
	}
	if fc.Title != "" {
		cfg.ChartTitle = fc.Title
	}

	return nil
}

func applyEnv(cfg *Config) {
	cfg.Token = os.Getenv("GITHUB_TOKEN")

	if org := firstEnv("GITHUB_ORG", "ORGANIZATION"); org != "" {
		cfg.Organization = org
	}
	cfg.ProjectNumber = envAsInt("PROJECT_ID", cfg.ProjectNumber)
	if path := os.Getenv("README_PATH"); path != "" {
		cfg.ReadmePath = path
	}
	cfg.MaxItems = envAsInt("MAX_ITEMS", cfg.MaxItems)
	cfg.DryRun = envAsBool("DRY_RUN", cfg.DryRun)
	cfg.Verbose = envAsBool("VERBOSE", cfg.Verbose)
}

// firstEnv returns the first non-empty value among the named variables.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func envAsInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envAsBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	return strings.EqualFold(raw, "true")
}
