// Package llm provides chat-completion clients for the model providers the
// agents talk to.
//
// Both supported providers expose OpenAI-compatible chat endpoints; the
// GitHub Copilot variant differs only in its required version header. The
// clients here are deliberately thin: one POST per call, the first choice's
// content returned verbatim.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// MessageRole values accepted by OpenAI-compatible chat endpoints.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat message shared across agents.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Provider identifies a supported chat-completion backend.
type Provider string

const (
	ProviderOpenAI        Provider = "openai"
	ProviderGitHubCopilot Provider = "github_copilot"
)

// MissingRoleConfigError is returned when a chat is requested for a role the
// settings carry no model for.
type MissingRoleConfigError struct {
	Role string
}

func (e *MissingRoleConfigError) Error() string {
	return fmt.Sprintf("missing role configuration for %s", e.Role)
}

// MissingAPIKeyError is returned when the configured environment variable
// holds no API key.
type MissingAPIKeyError struct {
	EnvVar string
}

func (e *MissingAPIKeyError) Error() string {
	return fmt.Sprintf("api key not configured in environment variable %s", e.EnvVar)
}

// ErrUnknownProvider is returned by New for a provider value it does not
// recognize.
var ErrUnknownProvider = errors.New("unknown llm provider")

// Client is the behavior agents require from a model provider. The role
// argument selects the per-role model and temperature from settings.
type Client interface {
	Chat(ctx context.Context, role string, messages []Message) (string, error)
}

// New creates a client for the given provider. The apiVersion argument only
// applies to GitHub Copilot; an empty value selects the provider default.
func New(provider Provider, settings Settings, apiVersion string) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(settings)
	case ProviderGitHubCopilot:
		return NewCopilotClient(settings, apiVersion)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}
