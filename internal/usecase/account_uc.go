package usecase

import (
	"context"
	"strings"

	"telegram-promo-activator/internal/domain"
	"telegram-promo-activator/internal/domain/model"
	"telegram-promo-activator/internal/domain/ports/adapter"
	"telegram-promo-activator/internal/domain/ports/repository"
	"telegram-promo-activator/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase exposes account registry operations used by bot/admin flows.
type AccountUseCase interface {
	// Register upserts an account by token. The returned bool reports whether
	// the token answered a profile probe; registration succeeds either way.
	Register(ctx context.Context, token string) (*model.Account, bool, error)
	List(ctx context.Context) ([]*model.Account, error)
}

type accountUC struct {
	accounts repository.AccountRepository
	api      adapter.GiftsBattleAdapter
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewAccountUseCase(
	accounts repository.AccountRepository,
	api adapter.GiftsBattleAdapter,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *accountUC {
	return &accountUC{accounts: accounts, api: api, tm: tm, log: logger}
}

func (uc *accountUC) Register(ctx context.Context, token string) (*model.Account, bool, error) {
	defer logging.TraceDuration(uc.log, "AccountUC.Register")()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false, domain.ErrInvalidArgument
	}

	// Best-effort probe for a display name and starting balance. A failed
	// probe does not block registration; the token may simply be rate-limited
	// or the upstream briefly down.
	profile, perr := uc.api.FetchProfile(ctx, token)
	if perr != nil {
		uc.log.Warn().Err(perr).Str("token", logging.Redact(token)).Msg("token probe failed during registration")
	}

	acc, err := model.NewAccount(token, "")
	if err != nil {
		return nil, false, err
	}
	if profile != nil {
		acc.Username = profile.Username
		acc.Balance = profile.Balance
	}

	// Upsert and balance overwrite as one atomic operation, so a concurrent
	// refresh cannot interleave between them.
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.accounts.Save(ctx, tx, acc); err != nil {
			return err
		}
		if profile != nil {
			return uc.accounts.UpdateBalance(ctx, tx, acc.ID, profile.Balance)
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to register account")
		return nil, false, err
	}
	return acc, profile != nil, nil
}

func (uc *accountUC) List(ctx context.Context) ([]*model.Account, error) {
	defer logging.TraceDuration(uc.log, "AccountUC.List")()
	return uc.accounts.ListActive(ctx, repository.NoTX)
}
