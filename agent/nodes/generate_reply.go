package turnnode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mousaid/car-sales-agent/agent/catalog"
	"github.com/mousaid/car-sales-agent/agent/contract"
	historyx "github.com/mousaid/car-sales-agent/agent/history"
	promptx "github.com/mousaid/car-sales-agent/agent/prompt"
	"github.com/mousaid/car-sales-agent/agent/resolver"
)

const (
	replyRateLimited   = "Sorry, the AI assistant has reached its usage limit for now. Please try again later."
	replyInternalError = "Internal server error. Please try again later."
	greetInstruction   = "If this is the first message, greet the user."
)

// GenerateReply resolves the next action, renders the response prompt, and
// asks the model. Model failures are absorbed into fixed degraded replies
// that are never written to the transcript, so the next turn retries cleanly.
func GenerateReply(
	ctx context.Context,
	in *GraphState,
	completer contract.Completer,
	transcripts historyx.Store,
	template string,
) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}

	p := in.Profile
	action := resolver.NextAction(p, len(in.Matches) > 0)

	profileJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return GraphOutput{}, fmt.Errorf("marshal profile for response prompt: %w", err)
	}

	greet := ""
	if in.FirstMessage {
		greet = greetInstruction
	}

	prompt := promptx.Render(template, map[string]string{
		"language_instruction":  languageInstruction(in.Language),
		"history":               in.HistoryContext,
		"message":               in.UserMessage,
		"profile":               string(profileJSON),
		"cars":                  catalog.Summary(in.Matches),
		"greet_instruction":     greet,
		"next_question":         action.Question,
		"preferred_cars":        strings.Join(p.PreferredCars, ", "),
		"perfect_car_found":     strconv.FormatBool(p.PerfectCarFound),
		"test_drive_not_agreed": strconv.FormatBool(!p.HasAgreedToTestDrive),
		"budget":                budgetText(p.Budget),
		"currency":              p.Currency,
	})

	reply, err := completer.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, contract.ErrQuotaExceeded) {
			log.Error().Err(err).Str("session_id", in.SessionID).Msg("model quota exceeded")
			return GraphOutput{Reply: replyRateLimited, Status: contract.StatusRateLimited}, nil
		}
		log.Error().Err(err).Str("session_id", in.SessionID).Msg("response generation failed")
		return GraphOutput{Reply: replyInternalError, Status: contract.StatusError}, nil
	}

	if err := transcripts.Append(ctx, in.SessionID, historyx.RoleAssistant, reply); err != nil {
		return GraphOutput{}, fmt.Errorf("%w: record generated reply: %v", contract.ErrStorage, err)
	}
	return GraphOutput{Reply: reply, Status: contract.StatusOK}, nil
}

func languageInstruction(language string) string {
	if language != "" {
		return fmt.Sprintf("Always respond in %s.", language)
	}
	return "Detect the language used by the user in the latest message and always respond in that language."
}

func budgetText(budget *float64) string {
	if budget == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*budget, 'f', -1, 64)
}
