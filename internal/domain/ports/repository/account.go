package repository

import (
	"context"

	"telegram-promo-activator/internal/domain/model"
)

// AccountRepository is the durable registry of accounts.
//
// Save upserts by token: re-registering an existing token overwrites its row
// and never creates a duplicate. ListActive returns accounts in insertion
// order; callers may rely on that only for display truncation, never for
// correctness.
type AccountRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Account) error
	FindByToken(ctx context.Context, tx Tx, token string) (*model.Account, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Account, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Account, error)
	UpdateBalance(ctx context.Context, tx Tx, accountID, balance int64) error
	CountActive(ctx context.Context, tx Tx) (int, error)
	SumBalances(ctx context.Context, tx Tx) (int64, error)
}
