package llm

import "context"

// OpenAIClient talks to OpenAI-compatible chat-completion endpoints.
type OpenAIClient struct {
	transport *httpChatClient
}

// NewOpenAIClient creates a client, resolving the API key up front so a
// missing key fails at construction rather than on the first step.
func NewOpenAIClient(settings Settings) (*OpenAIClient, error) {
	transport, err := newHTTPChatClient(settings, nil)
	if err != nil {
		return nil, err
	}
	return &OpenAIClient{transport: transport}, nil
}

// Chat implements Client.
func (c *OpenAIClient) Chat(ctx context.Context, role string, messages []Message) (string, error) {
	return c.transport.Chat(ctx, role, messages)
}
