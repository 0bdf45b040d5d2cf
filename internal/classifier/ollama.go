package classifier

import (
	"context"
	"fmt"
	"strings"
)

const defaultOllamaBaseURL = "http://localhost:11434"

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// OllamaClient talks to a local Ollama server through /api/generate.
type OllamaClient struct {
	*core
	opts     Options
	endpoint string
}

// NewOllamaClient creates a client.
func NewOllamaClient(opts Options) *OllamaClient {
	if opts.Model == "" {
		opts.Model = "llama3.2"
	}
	base := opts.BaseURL
	if base == "" {
		base = defaultOllamaBaseURL
	}
	c := &OllamaClient{opts: opts, endpoint: strings.TrimRight(base, "/") + "/api/generate"}
	c.core = newCore(ProviderOllama, opts.Model, opts.MaxTokens, opts.Logger, c.send)
	return c
}

func (c *OllamaClient) send(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var resp ollamaResponse
	err := postJSON(ctx, ProviderOllama, c.opts.httpClient(), c.endpoint, nil, ollamaRequest{
		Model:   c.opts.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{NumPredict: maxTokens},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama: %s", resp.Error)
	}
	return resp.Response, nil
}
