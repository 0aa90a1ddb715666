package contract

// Message is one entry of the incoming conversation payload. Only the last
// user message is consumed per turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TurnStatus string

const (
	StatusOK          TurnStatus = "ok"
	StatusRateLimited TurnStatus = "rate_limited"
	StatusError       TurnStatus = "error"
)

type TurnRequest struct {
	Messages  []Message `json:"messages"`
	SessionID string    `json:"session_id,omitempty"`
	Language  string    `json:"language,omitempty"`
}

type TurnResponse struct {
	Reply     string     `json:"response"`
	SessionID string     `json:"session_id"`
	Status    TurnStatus `json:"-"`
}
