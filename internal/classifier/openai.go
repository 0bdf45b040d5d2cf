package classifier

import (
	"context"
	"fmt"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message      openaiMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIClient talks to the Chat Completions API, either OpenAI itself or
// any compatible endpoint (LM Studio, vLLM, llama.cpp server) via BaseURL.
type OpenAIClient struct {
	*core
	opts     Options
	endpoint string
}

// NewOpenAIClient creates a client. provider labels metrics and errors;
// pass ProviderOpenAI or ProviderCustom.
func NewOpenAIClient(provider string, opts Options) *OpenAIClient {
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	c := &OpenAIClient{opts: opts, endpoint: chatCompletionsURL(opts.BaseURL)}
	c.core = newCore(provider, opts.Model, opts.MaxTokens, opts.Logger, c.send)
	return c
}

// chatCompletionsURL accepts either an API root (".../v1") or the full endpoint.
func chatCompletionsURL(base string) string {
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

func (c *OpenAIClient) send(ctx context.Context, prompt string, maxTokens int) (string, error) {
	headers := map[string]string{}
	if c.opts.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.opts.APIKey
	}

	var resp openaiResponse
	err := postJSON(ctx, c.provider, c.opts.httpClient(), c.endpoint, headers, openaiRequest{
		Model:     c.opts.Model,
		Messages:  []openaiMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%s: API error: %s - %s", c.provider, resp.Error.Type, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: returned no choices", c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}
