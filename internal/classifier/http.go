package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fsort/internal/version"
)

// Options configures an HTTP backend.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	// per-call deadlines come from the engine's context
	return &http.Client{Timeout: 5 * time.Minute}
}

// maxResponseBody bounds how much of a successful reply is read.
const maxResponseBody = 1 << 20

// postJSON sends payload to url and decodes a 2xx response into out.
func postJSON(ctx context.Context, provider string, client *http.Client, url string, headers map[string]string, payload, out any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshaling request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("%s: creating HTTP request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: HTTP request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	limit := int64(maxResponseBody)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		limit = 4 * maxErrorBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return fmt.Errorf("%s: reading response body: %w", provider, err)
	}
	if err := checkStatus(provider, resp, body); err != nil {
		return err
	}
	if int64(len(body)) > limit {
		return fmt.Errorf("%s: response exceeds %d bytes", provider, limit)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: parsing response JSON: %w", provider, err)
	}
	return nil
}
