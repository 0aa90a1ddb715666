package turnnode

import (
	"context"
	"fmt"

	"github.com/mousaid/car-sales-agent/agent/catalog"
	"github.com/mousaid/car-sales-agent/agent/contract"
	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

// RefreshCatalog re-queries the inventory under the merged constraints, then
// recomputes and persists the derived flags so they never go stale relative
// to the fields they summarize.
func RefreshCatalog(
	ctx context.Context,
	in *GraphState,
	cars catalog.Store,
	profiles profilex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}
	if in.Done {
		return in, nil
	}

	p := in.Profile
	matches, err := cars.Match(ctx, catalog.Constraints{
		Budget:       p.Budget,
		Preferences:  p.Preferences,
		Requirements: p.Requirements,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query catalog: %v", contract.ErrStorage, err)
	}
	in.Matches = matches

	perfectCarFound := p.Qualified() && len(matches) > 0
	hasAgreed := p.TestDriveAgreed || p.TestDriveStatus

	if perfectCarFound != p.PerfectCarFound || hasAgreed != p.HasAgreedToTestDrive {
		if err := profiles.MergeUpdate(ctx, in.SessionID, profilex.Update{
			PerfectCarFound:      &perfectCarFound,
			HasAgreedToTestDrive: &hasAgreed,
		}); err != nil {
			return nil, fmt.Errorf("%w: persist derived flags: %v", contract.ErrStorage, err)
		}
	}
	p.PerfectCarFound = perfectCarFound
	p.HasAgreedToTestDrive = hasAgreed
	return in, nil
}
