package turnnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/mousaid/car-sales-agent/agent/contract"
	historyx "github.com/mousaid/car-sales-agent/agent/history"
	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

const (
	replyConfirmationAck = "Thank you for confirming! I have sent your test drive schedule confirmation to your email. Is there anything else I can help you with?"
	replyReaskContact    = "Can you please give me your email and phone number?"
	replyTestDriveAgreed = "Thank you for agreeing to a test drive! We will send you an email with the details shortly. " +
		"Would you also like to provide your phone number and email to confirm your booking?"
)

// DispatchEmail hands a snapshot of the profile to a background sender; it
// must not block the turn.
type DispatchEmail func(p *profilex.Profile)

// ShortCircuit resolves the two transactional turns with a canned reply and
// skips generation: the yes/no answer to the confirmation summary, and a
// fresh test-drive agreement surfaced by extraction. Everything else falls
// through to the generative path.
func ShortCircuit(
	ctx context.Context,
	in *GraphState,
	profiles profilex.Store,
	transcripts historyx.Store,
	dispatch DispatchEmail,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}
	if in.Done {
		return in, nil
	}

	p := in.Profile
	if p.PhoneNumber != nil && p.Email != nil && !p.ConfirmationSent {
		lower := strings.ToLower(in.UserMessage)
		switch {
		case strings.Contains(lower, "yes"):
			sent := true
			if err := profiles.MergeUpdate(ctx, in.SessionID, profilex.Update{ConfirmationSent: &sent}); err != nil {
				return nil, fmt.Errorf("%w: mark confirmation sent: %v", contract.ErrStorage, err)
			}
			latest, err := profiles.Get(ctx, in.SessionID)
			if err != nil {
				return nil, fmt.Errorf("%w: reload profile for confirmation: %v", contract.ErrStorage, err)
			}
			in.Profile = latest
			if dispatch != nil {
				dispatch(latest)
			}
			return finishWith(ctx, in, transcripts, replyConfirmationAck)
		case strings.Contains(lower, "no"):
			if err := profiles.ClearContact(ctx, in.SessionID); err != nil {
				return nil, fmt.Errorf("%w: clear contact details: %v", contract.ErrStorage, err)
			}
			p.PhoneNumber = nil
			p.Email = nil
			return finishWith(ctx, in, transcripts, replyReaskContact)
		}
	}

	if in.Update.TestDriveAgreed != nil && *in.Update.TestDriveAgreed {
		agreed := true
		if err := profiles.MergeUpdate(ctx, in.SessionID, profilex.Update{TestDriveAgreed: &agreed}); err != nil {
			return nil, fmt.Errorf("%w: mark test drive agreed: %v", contract.ErrStorage, err)
		}
		latest, err := profiles.Get(ctx, in.SessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: reload profile after agreement: %v", contract.ErrStorage, err)
		}
		in.Profile = latest
		return finishWith(ctx, in, transcripts, replyTestDriveAgreed)
	}

	return in, nil
}

func finishWith(ctx context.Context, in *GraphState, transcripts historyx.Store, reply string) (*GraphState, error) {
	if err := transcripts.Append(ctx, in.SessionID, historyx.RoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("%w: record canned reply: %v", contract.ErrStorage, err)
	}
	in.Reply = reply
	in.Status = contract.StatusOK
	in.Done = true
	return in, nil
}
