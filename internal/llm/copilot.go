package llm

import "context"

// defaultCopilotAPIVersion is used when the configuration does not pin one.
const defaultCopilotAPIVersion = "2023-12-01"

// CopilotClient talks to the GitHub Copilot chat API. The endpoint shape is
// OpenAI-compatible; Copilot additionally requires the X-GitHub-Api-Version
// header on every request.
type CopilotClient struct {
	transport  *httpChatClient
	apiVersion string
}

// NewCopilotClient creates a client. An empty apiVersion selects the
// provider default.
func NewCopilotClient(settings Settings, apiVersion string) (*CopilotClient, error) {
	if apiVersion == "" {
		apiVersion = defaultCopilotAPIVersion
	}
	transport, err := newHTTPChatClient(settings, map[string]string{
		"X-GitHub-Api-Version": apiVersion,
	})
	if err != nil {
		return nil, err
	}
	return &CopilotClient{transport: transport, apiVersion: apiVersion}, nil
}

// APIVersion returns the version header value the client sends.
func (c *CopilotClient) APIVersion() string {
	return c.apiVersion
}

// Chat implements Client.
func (c *CopilotClient) Chat(ctx context.Context, role string, messages []Message) (string, error) {
	return c.transport.Chat(ctx, role, messages)
}
