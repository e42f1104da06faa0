package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tdxlabs/tdx/internal/llm"
)

// Default values applied before unmarshal.
const (
	DefaultKataFile    = "kata.md"
	DefaultPlanDir     = ".tdx/plan"
	DefaultLogDir      = ".tdx/logs"
	DefaultMaxSteps    = 10
	DefaultMaxAttempts = 2
	DefaultTemperature = 0.2
)

// DefaultConfig returns a Config with every defaultable field populated.
// Fields without defaults (models, base URL, CI commands, author) must come
// from the file and are enforced by Validate.
func DefaultConfig() Config {
	return Config{
		Workspace: WorkspaceConfig{
			KataFile:            DefaultKataFile,
			PlanDir:             DefaultPlanDir,
			LogDir:              DefaultLogDir,
			MaxSteps:            DefaultMaxSteps,
			MaxAttemptsPerAgent: DefaultMaxAttempts,
		},
		Roles: RolesConfig{
			Tester:      RoleConfig{Temperature: DefaultTemperature},
			Implementor: RoleConfig{Temperature: DefaultTemperature},
			Refactorer:  RoleConfig{Temperature: DefaultTemperature},
		},
		LLM: LLMConfig{Provider: llm.ProviderOpenAI},
	}
}

// ValidationError reports one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Load reads and validates a tdx.yaml file. The file must exist: a
// workspace without configuration is not runnable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize repairs zero values that unmarshal can legitimately produce,
// e.g. an explicit `max_steps: 0`.
func (c *Config) normalize() {
	if c.Workspace.MaxSteps <= 0 {
		c.Workspace.MaxSteps = DefaultMaxSteps
	}
	if c.Workspace.MaxAttemptsPerAgent <= 0 {
		c.Workspace.MaxAttemptsPerAgent = DefaultMaxAttempts
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = llm.ProviderOpenAI
	}
}

// Validate checks every field callers depend on.
func (c *Config) Validate() error {
	if c.Workspace.KataFile == "" {
		return ValidationError{Field: "workspace.kata_file", Message: "cannot be empty"}
	}
	if c.Workspace.PlanDir == "" {
		return ValidationError{Field: "workspace.plan_dir", Message: "cannot be empty"}
	}
	if c.Workspace.LogDir == "" {
		return ValidationError{Field: "workspace.log_dir", Message: "cannot be empty"}
	}

	for _, role := range []struct {
		key string
		cfg RoleConfig
	}{
		{"tester", c.Roles.Tester},
		{"implementor", c.Roles.Implementor},
		{"refactorer", c.Roles.Refactorer},
	} {
		if role.cfg.Model == "" {
			return ValidationError{
				Field:   fmt.Sprintf("roles.%s.model", role.key),
				Message: "model cannot be empty",
			}
		}
		if role.cfg.Temperature < 0 || role.cfg.Temperature > 2 {
			return ValidationError{
				Field:   fmt.Sprintf("roles.%s.temperature", role.key),
				Message: "temperature must be between 0.0 and 2.0",
			}
		}
	}

	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderGitHubCopilot:
	default:
		return ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider %q", c.LLM.Provider),
		}
	}
	if c.LLM.BaseURL == "" {
		return ValidationError{Field: "llm.base_url", Message: "cannot be empty"}
	}
	if c.LLM.APIKeyEnv == "" {
		return ValidationError{Field: "llm.api_key_env", Message: "cannot be empty"}
	}

	for _, cmd := range []struct {
		field string
		argv  []string
	}{
		{"ci.fmt", c.CI.Fmt},
		{"ci.check", c.CI.Check},
		{"ci.test", c.CI.Test},
	} {
		if len(cmd.argv) == 0 {
			return ValidationError{Field: cmd.field, Message: "command list cannot be empty"}
		}
	}

	if c.CommitAuthor.Name == "" {
		return ValidationError{Field: "commit_author.name", Message: "cannot be empty"}
	}
	if c.CommitAuthor.Email == "" {
		return ValidationError{Field: "commit_author.email", Message: "cannot be empty"}
	}

	if c.Bootstrap != nil && len(c.Bootstrap.Command) == 0 {
		return ValidationError{Field: "bootstrap.command", Message: "command list cannot be empty"}
	}

	return nil
}
