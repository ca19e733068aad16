// Package llm provides the AI coach pipeline: provider clients for hosted
// model APIs, context assembly from training data, prompt construction, and
// a repair-retry invocation loop that coerces model output into valid JSON.
package llm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gymbuddy-app/gymbuddy/internal/models"
)

// ErrNotConfigured is returned when no AI coach provider is configured.
var ErrNotConfigured = fmt.Errorf("llm: AI coach provider not configured")

// Provider is the interface for LLM backends.
type Provider interface {
	// Generate sends a system prompt and user prompt to the LLM and returns
	// the response text.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts Options) (*Response, error)

	// Ping validates connectivity and credentials. Returns nil if the
	// provider is reachable and authenticated.
	Ping(ctx context.Context) error

	// Name returns the display name of this provider (e.g. "OpenAI", "Anthropic").
	Name() string
}

// Options controls LLM generation behavior.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Response holds the LLM's output. Input and output tokens are tracked
// separately because they are billed at different rates.
type Response struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
	Duration     time.Duration
}

// APIError is a structured error from a provider's HTTP API.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("llm/%s: HTTP %d (%s): %s", strings.ToLower(e.Provider), e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("llm/%s: HTTP %d: %s", strings.ToLower(e.Provider), e.StatusCode, e.Message)
}

// UserMessage returns a human-readable description of the error, suitable
// for display without exposing raw provider responses.
func (e *APIError) UserMessage() string {
	lowerMsg := strings.ToLower(e.Message)
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return fmt.Sprintf("Invalid API key for %s. Check your provider settings.", e.Provider)
	case e.StatusCode == 429:
		return fmt.Sprintf("Rate limit exceeded on %s. Wait a moment and try again.", e.Provider)
	case strings.Contains(lowerMsg, "credit") || strings.Contains(lowerMsg, "billing") || strings.Contains(lowerMsg, "quota"):
		return fmt.Sprintf("Insufficient credits on your %s account.", e.Provider)
	case strings.Contains(lowerMsg, "model"):
		return fmt.Sprintf("Model not found on %s. Check the model name in your provider settings.", e.Provider)
	case e.StatusCode >= 500:
		return fmt.Sprintf("%s is temporarily unavailable. Try again in a few minutes.", e.Provider)
	default:
		return fmt.Sprintf("%s returned an error: %s", e.Provider, e.Message)
	}
}

// NewProviderFromSettings creates a Provider using the current app_settings
// configuration (with env var overrides).
func NewProviderFromSettings(db *sql.DB) (Provider, error) {
	provider := models.GetSetting(db, "llm.provider")
	if provider == "" {
		return nil, ErrNotConfigured
	}

	model := models.GetSetting(db, "llm.model")
	apiKey := models.GetSetting(db, "llm.api_key")
	baseURL := models.GetSetting(db, "llm.base_url")

	switch provider {
	case "openai":
		return NewOpenAIProvider(apiKey, model, baseURL), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey, model), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}
