package llm

import "os"

// RoleModel is the model selection for one agent role.
type RoleModel struct {
	Model       string
	Temperature float64
}

// Settings carries everything a provider client needs beyond the provider
// choice itself.
type Settings struct {
	BaseURL   string
	APIKeyEnv string
	Roles     map[string]RoleModel
}

// Role looks up the model configuration for a role key.
func (s Settings) Role(key string) (RoleModel, bool) {
	m, ok := s.Roles[key]
	return m, ok
}

// ResolveAPIKey reads the API key from the configured environment variable.
func (s Settings) ResolveAPIKey() (string, error) {
	key := os.Getenv(s.APIKeyEnv)
	if key == "" {
		return "", &MissingAPIKeyError{EnvVar: s.APIKeyEnv}
	}
	return key, nil
}
