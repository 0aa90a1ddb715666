package turnnode

import (
	"errors"
	"strings"

	"github.com/mousaid/car-sales-agent/agent/catalog"
	"github.com/mousaid/car-sales-agent/agent/contract"
	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

var ErrInvalidSession = errors.New("session id is empty")

type GraphInput struct {
	SessionID string
	Messages  []contract.Message
	Language  string
}

type GraphOutput struct {
	Reply  string
	Status contract.TurnStatus
}

// GraphState threads one turn through the pipeline. Done marks a terminal
// reply (no-op guard or transactional short-circuit); later nodes pass
// through untouched.
type GraphState struct {
	SessionID   string
	Language    string
	UserMessage string

	Profile        *profilex.Profile
	HistoryContext string
	FirstMessage   bool
	Update         profilex.Update
	Matches        []catalog.Product

	Reply  string
	Status contract.TurnStatus
	Done   bool
}

// ValidateRequest builds the initial state. An empty message list is not an
// error: the no-op guard downstream answers it with an empty reply.
func ValidateRequest(in GraphInput) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	userMessage := ""
	if len(in.Messages) > 0 {
		userMessage = in.Messages[len(in.Messages)-1].Content
	}

	return &GraphState{
		SessionID:   sessionID,
		Language:    strings.TrimSpace(in.Language),
		UserMessage: userMessage,
		Status:      contract.StatusOK,
	}, nil
}
