package turnnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/mousaid/car-sales-agent/agent/contract"
	historyx "github.com/mousaid/car-sales-agent/agent/history"
	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

// LoadState fetches (lazily creating) the profile and the recent transcript
// window. Storage being unreachable is fatal for the whole turn.
func LoadState(
	ctx context.Context,
	in *GraphState,
	profiles profilex.Store,
	transcripts historyx.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}

	p, err := profiles.Get(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: load profile: %v", contract.ErrStorage, err)
	}

	entries, err := transcripts.Recent(ctx, in.SessionID, historyx.DefaultWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: load transcript: %v", contract.ErrStorage, err)
	}

	in.Profile = p
	in.HistoryContext = historyx.Context(historyx.Window(entries, historyx.DefaultWindow))
	in.FirstMessage = strings.TrimSpace(in.HistoryContext) == ""
	return in, nil
}
