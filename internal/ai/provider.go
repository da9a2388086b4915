package ai

import (
	"context"
	"fmt"

	"github.com/keshon/server-ghost/internal/config"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Provider is one text-generation backend. Implementations return the raw
// reply text; retry and cleanup live above this interface.
type Provider interface {
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
}

// New selects the provider configured at startup.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.LLMProvider {
	case "glm", "":
		return NewGLMProvider(cfg.GLMAPIKey, cfg.GLMBaseURL, cfg.GLMModel)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	case "gemini":
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %s (use glm, openai or gemini)", cfg.LLMProvider)
	}
}

// StatusError carries the HTTP status of a failed provider call so callers
// can separate auth failures from transient transport errors.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider http %d: %s", e.Code, e.Body)
}

// StatusCode implements the retrylimit.HTTPError contract.
func (e *StatusError) StatusCode() int { return e.Code }
