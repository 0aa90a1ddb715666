package turnnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/mousaid/car-sales-agent/agent/contract"
	historyx "github.com/mousaid/car-sales-agent/agent/history"
)

// RecordInput appends the user message to the transcript before any further
// processing, so the message survives even if a later step fails. A request
// without a user message short-circuits to an empty reply.
func RecordInput(
	ctx context.Context,
	in *GraphState,
	transcripts historyx.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}

	if strings.TrimSpace(in.UserMessage) == "" {
		in.Done = true
		in.Reply = ""
		return in, nil
	}

	if err := transcripts.Append(ctx, in.SessionID, historyx.RoleUser, in.UserMessage); err != nil {
		return nil, fmt.Errorf("%w: record user message: %v", contract.ErrStorage, err)
	}
	return in, nil
}
