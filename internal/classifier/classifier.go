// Package classifier talks to the language-model backends that turn a file
// name and path into a "Category : Subcategory" answer.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"fsort/internal/slogutil"
	"fsort/internal/taxonomy"
)

// Classifier is the capability the resolution engine consumes. The engine
// never assumes a particular backend.
type Classifier interface {
	// Categorize asks for a category for one entry. promptContext is appended
	// to the shared categorization prompt and may be empty.
	Categorize(ctx context.Context, name, path string, kind taxonomy.EntryKind, promptContext string) (string, error)

	// Complete sends a raw prompt.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)

	// SetPromptLogging toggles logging of prompts and responses at info level.
	SetPromptLogging(enabled bool)
}

// Provider names accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderCustom    = "custom"
)

// IsLocal reports whether provider runs on this machine. Local models are
// slow to answer but never rate limited.
func IsLocal(provider string) bool {
	return provider == ProviderOllama
}

// BuildCategorizationPrompt renders the prompt shared by every backend.
func BuildCategorizationPrompt(name, path string, kind taxonomy.EntryKind, promptContext string) string {
	noun := "file"
	if kind == taxonomy.Directory {
		noun = "folder"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Categorize the following %s for a tidy folder structure.\n", noun)
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Path: %s\n", path)
	if promptContext = strings.TrimSpace(promptContext); promptContext != "" {
		b.WriteString("\n")
		b.WriteString(promptContext)
		b.WriteString("\n")
	}
	b.WriteString("\nReply with exactly one line in the form \"Category : Subcategory\" and nothing else.")
	return b.String()
}

// sendFunc performs one request against a backend.
type sendFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

// core carries what every backend shares: observability, prompt logging and
// the Categorize/Complete entry points.
type core struct {
	provider   string
	model      string
	maxTokens  int
	logger     *slog.Logger
	logPrompts atomic.Bool
	send       sendFunc
}

func newCore(provider, model string, maxTokens int, logger *slog.Logger, send sendFunc) *core {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &core{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
		logger:    slogutil.OrDiscard(logger),
		send:      send,
	}
}

const defaultMaxTokens = 64

// Categorize implements Classifier.
func (c *core) Categorize(ctx context.Context, name, path string, kind taxonomy.EntryKind, promptContext string) (string, error) {
	return c.Complete(ctx, BuildCategorizationPrompt(name, path, kind, promptContext), c.maxTokens)
}

// Complete implements Classifier.
func (c *core) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	logPrompts := c.logPrompts.Load()
	if logPrompts {
		c.logger.Info("Classifier prompt", "provider", c.provider, "model", c.model, "prompt", prompt)
	}

	out, err := observe(ctx, c.provider, c.model, func(ctx context.Context) (string, error) {
		return c.send(ctx, prompt, maxTokens)
	})
	if err != nil {
		c.logger.Debug("Classifier call failed", "provider", c.provider, "error", err)
		return "", err
	}

	if logPrompts {
		c.logger.Info("Classifier response", "provider", c.provider, "response", out)
	}
	return out, nil
}

// SetPromptLogging implements Classifier.
func (c *core) SetPromptLogging(enabled bool) {
	c.logPrompts.Store(enabled)
}
