package turnnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mousaid/car-sales-agent/agent/contract"
	"github.com/mousaid/car-sales-agent/agent/extractor"
	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

// ExtractAndMerge runs the extraction sub-routine and folds its update into
// the stored profile. Extraction failures are logged and swallowed: the turn
// continues on whatever the profile already holds. Only the merge itself can
// fail the turn.
func ExtractAndMerge(
	ctx context.Context,
	in *GraphState,
	ex *extractor.Extractor,
	profiles profilex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}
	if in.Done {
		return in, nil
	}

	upd, err := ex.Extract(ctx, in.HistoryContext, in.UserMessage, in.Profile)
	if err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("extraction failed, continuing without update")
		upd = profilex.Update{}
	}
	in.Update = upd

	if !upd.IsZero() {
		if err := profiles.MergeUpdate(ctx, in.SessionID, upd); err != nil {
			return nil, fmt.Errorf("%w: merge extraction: %v", contract.ErrStorage, err)
		}
	}

	p, err := profiles.Get(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: reload profile: %v", contract.ErrStorage, err)
	}
	in.Profile = p
	return in, nil
}
