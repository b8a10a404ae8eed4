package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-promo-activator/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

// StateRepo manages admin conversational state in Redis.
type StateRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewStateRepo(client RedisClient, ttl time.Duration) repository.StateRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute // give admins 15 minutes to finish a two-step flow
	}
	return &StateRepo{client: client, ttl: ttl}
}

func (s *StateRepo) stateKey(chatID int64) string {
	return fmt.Sprintf("admin_state:%d", chatID)
}

func (s *StateRepo) SetState(ctx context.Context, chatID int64, state *repository.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(chatID), data, s.ttl)
}

// GetState returns the pending state, or nil when the chat is idle.
func (s *StateRepo) GetState(ctx context.Context, chatID int64) (*repository.ConversationState, error) {
	data, err := s.client.Get(ctx, s.stateKey(chatID))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var state repository.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *StateRepo) ClearState(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.stateKey(chatID))
}
