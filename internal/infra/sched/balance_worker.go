package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-promo-activator/internal/usecase"
)

// BalanceWorker periodically refreshes account balances from the remote
// profile endpoint so stats stay close to reality between activations.
type BalanceWorker struct {
	interval  time.Duration
	balanceUC usecase.BalanceUseCase
	log       *zerolog.Logger
}

func NewBalanceWorker(interval time.Duration, balanceUC usecase.BalanceUseCase, logger *zerolog.Logger) *BalanceWorker {
	compLog := logger.With().Str("component", "BalanceWorker").Logger()
	return &BalanceWorker{
		interval:  interval,
		balanceUC: balanceUC,
		log:       &compLog,
	}
}

func (w *BalanceWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting balance worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping balance worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.balanceUC.RefreshBalances(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("balance refresh error")
				continue
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("account balances refreshed")
			}
		}
	}
}
