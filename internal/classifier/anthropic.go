package classifier

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"
)

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnthropicClient talks to the Messages API.
type AnthropicClient struct {
	*core
	opts     Options
	endpoint string
}

// NewAnthropicClient creates a client.
func NewAnthropicClient(opts Options) *AnthropicClient {
	if opts.Model == "" {
		opts.Model = "claude-3-5-haiku-latest"
	}
	base := opts.BaseURL
	if base == "" {
		base = defaultAnthropicBaseURL
	}
	c := &AnthropicClient{opts: opts, endpoint: strings.TrimRight(base, "/") + "/messages"}
	c.core = newCore(ProviderAnthropic, opts.Model, opts.MaxTokens, opts.Logger, c.send)
	return c
}

func (c *AnthropicClient) send(ctx context.Context, prompt string, maxTokens int) (string, error) {
	headers := map[string]string{
		"x-api-key":         c.opts.APIKey,
		"anthropic-version": anthropicAPIVersion,
	}

	var resp anthropicResponse
	err := postJSON(ctx, ProviderAnthropic, c.opts.httpClient(), c.endpoint, headers, anthropicRequest{
		Model:     c.opts.Model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("anthropic: API error: %s - %s", resp.Error.Type, resp.Error.Message)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic: returned no text content")
	}
	return b.String(), nil
}
