package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"telegram-promo-activator/internal/domain"
	"telegram-promo-activator/internal/domain/model"
	"telegram-promo-activator/internal/domain/ports/adapter"
	"telegram-promo-activator/internal/domain/ports/repository"
	"telegram-promo-activator/internal/infra/logging"
	"telegram-promo-activator/internal/infra/metrics"
	"telegram-promo-activator/internal/infra/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ActivationUseCase = (*activationUC)(nil)

// ActivationUseCase fans one promo code out to every active account and
// reduces the outcomes into a batch summary.
type ActivationUseCase interface {
	MassActivate(ctx context.Context, promoCode string) (*model.ActivationSummary, error)
}

type activationUC struct {
	accounts repository.AccountRepository
	ledger   repository.ActivationRepository
	api      adapter.GiftsBattleAdapter
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewActivationUseCase(
	accounts repository.AccountRepository,
	ledger repository.ActivationRepository,
	api adapter.GiftsBattleAdapter,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *activationUC {
	return &activationUC{
		accounts: accounts,
		ledger:   ledger,
		api:      api,
		pool:     pool,
		log:      logger,
	}
}

// MassActivate dispatches one activation per active account through the
// bounded pool and blocks until every unit has completed. There is no
// cancellation path and no retry: a unit's failure is recorded and never
// aborts its peers. The summary reflects every dispatched unit, no more, no
// fewer — even when all of them failed.
func (uc *activationUC) MassActivate(ctx context.Context, promoCode string) (*model.ActivationSummary, error) {
	defer logging.TraceDuration(uc.log, "ActivationUC.MassActivate")()

	promoCode = strings.TrimSpace(promoCode)
	if promoCode == "" {
		return nil, domain.ErrEmptyPromoCode
	}

	accounts, err := uc.accounts.ListActive(ctx, repository.NoTX)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to load active accounts")
		return nil, err
	}

	batchID := uuid.NewString()
	ctx = logging.WithBatchID(ctx, batchID)
	blog := uc.log.With().Str("batch_id", batchID).Str("promo_code", promoCode).Logger()
	blog.Info().Int("accounts", len(accounts)).Msg("starting mass activation")
	start := time.Now()

	// The outcome slice is the only state shared across units; appends are
	// serialized by the mutex. Each unit writes its own ledger row.
	var mu sync.Mutex
	outcomes := make([]model.ActivationOutcome, 0, len(accounts))

	tasks := make([]worker.Task, 0, len(accounts))
	for _, acc := range accounts {
		acc := acc
		tasks = append(tasks, func(ctx context.Context) {
			out := uc.activateOne(logging.WithAccountID(ctx, acc.ID), acc, promoCode)
			mu.Lock()
			outcomes = append(outcomes, out)
			mu.Unlock()
		})
	}
	uc.pool.Run(ctx, tasks)

	summary := model.SummarizeOutcomes(promoCode, outcomes)
	metrics.ObserveBatch(time.Since(start).Seconds(), summary.TotalAccounts)
	blog.Info().
		Int("total", summary.TotalAccounts).
		Int("success", summary.SuccessCount).
		Int("failure", summary.FailureCount).
		Int64("stars", summary.TotalStars).
		Dur("elapsed", time.Since(start)).
		Msg("mass activation finished")
	return summary, nil
}

// activateOne performs a single account's activation and records the attempt.
// A ledger write failure is logged and counted but never aborts the batch.
func (uc *activationUC) activateOne(ctx context.Context, acc *model.Account, promoCode string) model.ActivationOutcome {
	ulog := logging.With(ctx, uc.log)

	res, err := uc.api.Activate(ctx, acc.Token, promoCode)
	if err != nil {
		// Network fault or timeout: a failed outcome local to this account.
		ulog.Warn().Err(err).Msg("activation call failed")
		res = adapter.ActivationResult{}
	}

	out := model.ActivationOutcome{
		AccountID:  acc.ID,
		Success:    res.Success,
		StatusCode: res.StatusCode,
		Stars:      res.Stars,
	}
	if !out.Success {
		out.Stars = 0
	}

	rec := &model.ActivationRecord{
		AccountID:     acc.ID,
		PromoCode:     promoCode,
		Success:       out.Success,
		StarsReported: out.Stars,
		ActivatedAt:   time.Now(),
	}
	if rerr := uc.ledger.Record(ctx, repository.NoTX, rec); rerr != nil {
		metrics.IncLedgerWriteError()
		ulog.Error().Err(rerr).Msg("failed to record activation")
	}

	metrics.IncActivation(out.Success)
	if out.Success {
		metrics.AddActivationStars(out.Stars)
	}
	return out
}
