package contract

import (
	"context"

	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

// Completer is the opaque text-completion collaborator. Both free-form reply
// generation and structured extraction go through the same call shape.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Mailer sends the test-drive confirmation summary. Dispatch is fire-and-forget
// from the caller's point of view; errors are for logging only.
type Mailer interface {
	SendConfirmation(ctx context.Context, p *profilex.Profile) error
}
