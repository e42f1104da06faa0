package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// chatRequest is the OpenAI-compatible request body shared by both
// providers.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []Message     `json:"messages"`
	Temperature float64       `json:"temperature"`
	Metadata    *chatMetadata `json:"metadata,omitempty"`
}

// chatMetadata tags the request with the agent role for provider-side
// attribution.
type chatMetadata struct {
	Role string `json:"role"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// httpChatClient is the shared transport for OpenAI-compatible endpoints.
// Provider differences are confined to extraHeaders.
type httpChatClient struct {
	httpClient   *http.Client
	settings     Settings
	apiKey       string
	extraHeaders map[string]string
}

func newHTTPChatClient(settings Settings, extraHeaders map[string]string) (*httpChatClient, error) {
	apiKey, err := settings.ResolveAPIKey()
	if err != nil {
		return nil, err
	}
	return &httpChatClient{
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		settings:     settings,
		apiKey:       apiKey,
		extraHeaders: extraHeaders,
	}, nil
}

// Chat posts a chat completion and returns the first choice's content.
func (c *httpChatClient) Chat(ctx context.Context, role string, messages []Message) (string, error) {
	model, ok := c.settings.Role(role)
	if !ok {
		return "", &MissingRoleConfigError{Role: role}
	}

	payload := chatRequest{
		Model:       model.Model,
		Messages:    messages,
		Temperature: model.Temperature,
		Metadata:    &chatMetadata{Role: role},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	url := c.settings.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range c.extraHeaders {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat request returned status %d: %s", resp.StatusCode, string(detail))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", nil
	}
	return decoded.Choices[0].Message.Content, nil
}
