// Package orchestrator composes the per-turn pipeline into a compiled graph
// and exposes the single HandleTurn entry point consumed by the HTTP layer.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mousaid/car-sales-agent/agent/catalog"
	contractx "github.com/mousaid/car-sales-agent/agent/contract"
	"github.com/mousaid/car-sales-agent/agent/extractor"
	historyx "github.com/mousaid/car-sales-agent/agent/history"
	turnnode "github.com/mousaid/car-sales-agent/agent/nodes"
	profilex "github.com/mousaid/car-sales-agent/agent/profile"
	promptx "github.com/mousaid/car-sales-agent/agent/prompt"
)

const confirmationSendTimeout = 30 * time.Second

type Orchestrator struct {
	profiles    profilex.Store
	transcripts historyx.Store
	cars        catalog.Store
	extractor   *extractor.Extractor
	completer   contractx.Completer
	mailer      contractx.Mailer
	prompts     promptx.Set

	graphRunner compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput]
}

func New(
	profiles profilex.Store,
	transcripts historyx.Store,
	cars catalog.Store,
	ex *extractor.Extractor,
	completer contractx.Completer,
	mailer contractx.Mailer,
	prompts promptx.Set,
) (*Orchestrator, error) {
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	if transcripts == nil {
		return nil, errors.New("transcript store is required")
	}
	if cars == nil {
		return nil, errors.New("catalog store is required")
	}
	if ex == nil {
		return nil, errors.New("extractor is required")
	}
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if prompts.Responder == "" {
		return nil, errors.New("responder prompt is required")
	}

	o := &Orchestrator{
		profiles:    profiles,
		transcripts: transcripts,
		cars:        cars,
		extractor:   ex,
		completer:   completer,
		mailer:      mailer,
		prompts:     prompts,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn runs one conversational turn. A request without a session id
// gets a fresh one; the caller echoes it back so the client can stick to it.
func (o *Orchestrator) HandleTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	out, err := o.graphRunner.Invoke(ctx, turnnode.GraphInput{
		SessionID: sessionID,
		Messages:  req.Messages,
		Language:  req.Language,
	})
	if err != nil {
		return contractx.TurnResponse{SessionID: sessionID, Status: contractx.StatusError}, err
	}

	return contractx.TurnResponse{
		Reply:     out.Reply,
		SessionID: sessionID,
		Status:    out.Status,
	}, nil
}

// dispatchConfirmation sends the booking email off the request path. The
// reply to the customer is already decided; a delivery failure is only
// logged.
func (o *Orchestrator) dispatchConfirmation(p *profilex.Profile) {
	if o.mailer == nil || p == nil {
		return
	}
	snapshot := *p
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), confirmationSendTimeout)
		defer cancel()
		if err := o.mailer.SendConfirmation(ctx, &snapshot); err != nil {
			log.Error().Err(err).Str("session_id", snapshot.SessionID).Msg("confirmation email failed")
			return
		}
		log.Info().Str("session_id", snapshot.SessionID).Msg("confirmation email sent")
	}()
}
