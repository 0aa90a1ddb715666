// Package llm adapts the OpenAI-compatible chat API to the single
// text-in/text-out completion contract the dialogue core consumes.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openaisdk "github.com/openai/openai-go"

	"github.com/mousaid/car-sales-agent/agent/contract"
)

type Config struct {
	Model              string  `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int64   `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64 `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required", contract.ErrValidation)
	}
	return nil
}

type Client struct {
	api *openaisdk.Client
	cfg Config
}

var _ contract.Completer = (*Client)(nil)

func New(api *openaisdk.Client, cfg Config) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: openai client is required", contract.ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{api: api, cfg: cfg}, nil
}

// Complete sends one user message and returns the model text. Quota
// exhaustion is surfaced as contract.ErrQuotaExceeded so the orchestrator can
// answer with the throttling reply instead of a generic failure.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.cfg.Model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		MaxTokens:   openaisdk.Int(c.cfg.MaxCompletionToken),
		Temperature: openaisdk.Float(c.cfg.Temperature),
	})
	if err != nil {
		var apiErr *openaisdk.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", contract.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: %v", contract.ErrModelInvoke, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", contract.ErrModelInvoke)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
