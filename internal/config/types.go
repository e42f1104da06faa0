// Package config loads and validates tdx.yaml, the single configuration
// file describing a workspace.
package config

import "github.com/tdxlabs/tdx/internal/llm"

// Config is the top-level structure of tdx.yaml.
type Config struct {
	Workspace    WorkspaceConfig  `yaml:"workspace"`
	Roles        RolesConfig      `yaml:"roles"`
	LLM          LLMConfig        `yaml:"llm"`
	CI           CIConfig         `yaml:"ci"`
	CommitAuthor CommitAuthor     `yaml:"commit_author"`
	Bootstrap    *BootstrapConfig `yaml:"bootstrap,omitempty"`
}

// WorkspaceConfig locates the kata description and the step artifacts, and
// bounds the loop.
type WorkspaceConfig struct {
	KataFile            string `yaml:"kata_file"`
	PlanDir             string `yaml:"plan_dir"`
	LogDir              string `yaml:"log_dir"`
	MaxSteps            int    `yaml:"max_steps"`
	MaxAttemptsPerAgent int    `yaml:"max_attempts_per_agent"`
}

// RolesConfig selects a model per agent role.
type RolesConfig struct {
	Tester      RoleConfig `yaml:"tester"`
	Implementor RoleConfig `yaml:"implementor"`
	Refactorer  RoleConfig `yaml:"refactorer"`
}

// RoleConfig is the model selection for one role.
type RoleConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// LLMConfig selects and locates the chat-completion provider.
type LLMConfig struct {
	Provider   llm.Provider `yaml:"provider"`
	BaseURL    string       `yaml:"base_url"`
	APIKeyEnv  string       `yaml:"api_key_env"`
	APIVersion string       `yaml:"api_version"`
}

// EffectiveAPIVersion returns the version header value to send: the
// configured value, or the Copilot default when the provider needs one.
func (c LLMConfig) EffectiveAPIVersion() string {
	if c.APIVersion != "" {
		return c.APIVersion
	}
	if c.Provider == llm.ProviderGitHubCopilot {
		return "2023-12-01"
	}
	return ""
}

// CIConfig holds the three verification-gate commands as argv lists.
type CIConfig struct {
	Fmt   []string `yaml:"fmt"`
	Check []string `yaml:"check"`
	Test  []string `yaml:"test"`
}

// CommitAuthor is the signature recorded on every step commit.
type CommitAuthor struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// BootstrapConfig describes the optional provisioning command run before
// the first step.
type BootstrapConfig struct {
	Command   []string `yaml:"command"`
	SkipFiles []string `yaml:"skip_files"`
}

// LLMSettings converts the role and provider configuration into the
// settings shape the llm package consumes.
func (c *Config) LLMSettings() llm.Settings {
	return llm.Settings{
		BaseURL:   c.LLM.BaseURL,
		APIKeyEnv: c.LLM.APIKeyEnv,
		Roles: map[string]llm.RoleModel{
			"tester":      {Model: c.Roles.Tester.Model, Temperature: c.Roles.Tester.Temperature},
			"implementor": {Model: c.Roles.Implementor.Model, Temperature: c.Roles.Implementor.Temperature},
			"refactorer":  {Model: c.Roles.Refactorer.Model, Temperature: c.Roles.Refactorer.Temperature},
		},
	}
}
