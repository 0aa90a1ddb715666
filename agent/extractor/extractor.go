// Package extractor turns the latest user utterance plus conversation context
// into a typed partial profile update, using the generative collaborator as a
// sub-routine. Every failure mode here is recoverable: a turn with a broken
// extraction simply proceeds on the prior profile.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mousaid/car-sales-agent/agent/contract"
	"github.com/mousaid/car-sales-agent/agent/profile"
	promptx "github.com/mousaid/car-sales-agent/agent/prompt"
)

type Extractor struct {
	completer contract.Completer
	template  string
}

func New(completer contract.Completer, prompts promptx.Set) (*Extractor, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: completer is required", contract.ErrValidation)
	}
	if prompts.Extractor == "" {
		return nil, fmt.Errorf("%w: extractor prompt is missing", contract.ErrValidation)
	}
	return &Extractor{completer: completer, template: prompts.Extractor}, nil
}

// Extract asks the model for the 11-field JSON object and converts it into an
// Update. The returned error is informational: callers log it and continue
// with the (empty) update.
func (e *Extractor) Extract(
	ctx context.Context,
	historyContext string,
	userMessage string,
	current *profile.Profile,
) (profile.Update, error) {
	profileJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return profile.Update{}, fmt.Errorf("marshal profile for extraction: %w", err)
	}

	prompt := promptx.Render(e.template, map[string]string{
		"history": historyContext,
		"message": userMessage,
		"profile": string(profileJSON),
	})

	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return profile.Update{}, fmt.Errorf("extraction completion: %w", err)
	}
	log.Debug().Str("session_id", current.SessionID).Str("raw", truncate(raw, 500)).Msg("extraction output")

	fields, ok := decodeObject(raw)
	if !ok {
		return profile.Update{}, fmt.Errorf("no JSON object in extraction output")
	}

	if v, ok := fields["budget"]; ok {
		if budget := ParseBudget(v); budget != nil {
			fields["budget"] = *budget
		} else {
			delete(fields, "budget")
		}
	}

	return profile.FromExtraction(fields), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
