package usecase

import (
	"context"

	"telegram-promo-activator/internal/domain/model"
	"telegram-promo-activator/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	// Totals aggregates the registry and the ledger for reporting.
	Totals(ctx context.Context) (accounts int, totalBalance int64, activations int, totalStars int64, err error)
	RecentActivations(ctx context.Context, limit int) ([]*model.ActivationRecord, error)
}

type statsUC struct {
	accounts repository.AccountRepository
	ledger   repository.ActivationRepository

	log *zerolog.Logger
}

func NewStatsUseCase(accounts repository.AccountRepository, ledger repository.ActivationRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{accounts: accounts, ledger: ledger, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (int, int64, int, int64, error) {
	accounts, err := s.accounts.CountActive(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	balance, err := s.accounts.SumBalances(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	activations, err := s.ledger.CountSuccessful(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	stars, err := s.ledger.SumStars(ctx, repository.NoTX)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return accounts, balance, activations, stars, nil
}

func (s *statsUC) RecentActivations(ctx context.Context, limit int) ([]*model.ActivationRecord, error) {
	return s.ledger.ListRecent(ctx, repository.NoTX, limit)
}
