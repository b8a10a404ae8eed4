package model

import (
	"strings"
	"time"

	"telegram-promo-activator/internal/domain"
)

// Account is a GiftsBattle credential tracked by the bot. The bearer token is
// the identity; the numeric ID is assigned by the store on first save.
type Account struct {
	ID        int64
	Token     string
	Username  string
	Balance   int64
	IsActive  bool
	CreatedAt time.Time
}

func NewAccount(token, username string) (*Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Account{
		Token:     token,
		Username:  username,
		IsActive:  true,
		CreatedAt: time.Now(),
	}, nil
}

func (a *Account) IsZero() bool { return a == nil || a.Token == "" }
