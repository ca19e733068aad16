package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidJSON is returned when the model failed to produce parseable JSON
// after the repair retry.
var ErrInvalidJSON = errors.New("llm: model returned invalid JSON")

// repairInstruction is appended to the user prompt on the second attempt.
const repairInstruction = "IMPORTANT: Your previous response was not valid JSON. Return ONLY a valid JSON object, no markdown fences."

// Invocation is the outcome of a successful GenerateJSON call.
type Invocation struct {
	Raw          json.RawMessage
	Model        string
	InputTokens  int
	OutputTokens int
	Attempts     int
}

// GenerateJSON calls the provider and parses the response as a JSON object.
// If the first response is unparsable the call is retried exactly once with
// an explicit pure-JSON instruction appended to the user prompt. Markdown
// code fences around the payload are tolerated and stripped. Token counts
// reflect the attempt that produced the returned payload.
func GenerateJSON(ctx context.Context, provider Provider, systemPrompt, userPrompt string, opts Options) (*Invocation, error) {
	for attempt := 0; attempt < 2; attempt++ {
		prompt := userPrompt
		if attempt > 0 {
			prompt = userPrompt + "\n\n" + repairInstruction
		}

		resp, err := provider.Generate(ctx, systemPrompt, prompt, opts)
		if err != nil {
			return nil, err
		}

		jsonText := stripFences(resp.Content)
		if json.Valid([]byte(jsonText)) && strings.HasPrefix(strings.TrimSpace(jsonText), "{") {
			return &Invocation{
				Raw:          json.RawMessage(jsonText),
				Model:        resp.Model,
				InputTokens:  resp.InputTokens,
				OutputTokens: resp.OutputTokens,
				Attempts:     attempt + 1,
			}, nil
		}
	}
	return nil, ErrInvalidJSON
}

// GenerateObject runs GenerateJSON and unmarshals the payload into out.
func GenerateObject(ctx context.Context, provider Provider, systemPrompt, userPrompt string, opts Options, out any) (*Invocation, error) {
	inv, err := GenerateJSON(ctx, provider, systemPrompt, userPrompt, opts)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(inv.Raw, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return inv, nil
}

// stripFences removes a markdown code-fence wrapper around the response, if
// present. Only a leading/trailing fence is handled; fences inside the
// payload are left alone.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
