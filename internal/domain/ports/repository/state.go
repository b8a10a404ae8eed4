package repository

import "context"

// Steps of the admin conversational state machine. A chat is either idle or
// waiting for the next message to complete a two-step flow.
const (
	StepIdle              = ""
	StepAwaitingPromoCode = "awaiting_promo_code"
	StepAwaitingToken     = "awaiting_token"
)

type ConversationState struct {
	Step string `json:"step"`
}

// StateRepository persists per-chat conversational state with a TTL so a
// half-finished flow expires instead of wedging the chat.
type StateRepository interface {
	SetState(ctx context.Context, chatID int64, state *ConversationState) error
	GetState(ctx context.Context, chatID int64) (*ConversationState, error)
	ClearState(ctx context.Context, chatID int64) error
}
