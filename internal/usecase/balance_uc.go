package usecase

import (
	"context"
	"sync"

	"telegram-promo-activator/internal/domain/model"
	"telegram-promo-activator/internal/domain/ports/adapter"
	"telegram-promo-activator/internal/domain/ports/repository"
	"telegram-promo-activator/internal/infra/logging"
	"telegram-promo-activator/internal/infra/metrics"
	"telegram-promo-activator/internal/infra/worker"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ BalanceUseCase = (*balanceUC)(nil)

// BalanceUseCase re-polls every active account's balance and overwrites the
// cached value in the store.
type BalanceUseCase interface {
	RefreshBalances(ctx context.Context) (int, error)
}

type balanceUC struct {
	accounts repository.AccountRepository
	api      adapter.GiftsBattleAdapter
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewBalanceUseCase(
	accounts repository.AccountRepository,
	api adapter.GiftsBattleAdapter,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *balanceUC {
	return &balanceUC{accounts: accounts, api: api, pool: pool, log: logger}
}

// RefreshBalances fetches every active account's profile and overwrites the
// cached balance of those that answered. Accounts whose fetch failed keep
// their stale balance and are excluded from the returned count; no error is
// raised for them.
func (uc *balanceUC) RefreshBalances(ctx context.Context) (int, error) {
	defer logging.TraceDuration(uc.log, "BalanceUC.RefreshBalances")()

	accounts, err := uc.accounts.ListActive(ctx, repository.NoTX)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to load active accounts")
		return 0, err
	}

	var mu sync.Mutex
	updated := 0

	tasks := make([]worker.Task, 0, len(accounts))
	for _, acc := range accounts {
		acc := acc
		tasks = append(tasks, func(ctx context.Context) {
			if uc.refreshOne(ctx, acc) {
				mu.Lock()
				updated++
				mu.Unlock()
			}
		})
	}
	uc.pool.Run(ctx, tasks)

	metrics.AddBalancesRefreshed(updated)
	uc.log.Info().Int("updated", updated).Int("total", len(accounts)).Msg("balance refresh finished")
	return updated, nil
}

func (uc *balanceUC) refreshOne(ctx context.Context, acc *model.Account) bool {
	profile, err := uc.api.FetchProfile(ctx, acc.Token)
	if err != nil {
		// Revoked token or transient fault, indistinguishable; skip either way.
		uc.log.Debug().Err(err).Int64("account_id", acc.ID).Msg("profile fetch failed, balance left stale")
		return false
	}
	if err := uc.accounts.UpdateBalance(ctx, repository.NoTX, acc.ID, profile.Balance); err != nil {
		uc.log.Error().Err(err).Int64("account_id", acc.ID).Msg("failed to update balance")
		return false
	}
	return true
}
