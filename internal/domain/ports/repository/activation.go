package repository

import (
	"context"

	"telegram-promo-activator/internal/domain/model"
)

// ActivationRepository owns the append-only activation ledger.
type ActivationRepository interface {
	// Record appends one attempt. It must be safe for concurrent callers:
	// each batch unit writes exactly one row of its own.
	Record(ctx context.Context, tx Tx, rec *model.ActivationRecord) error
	CountSuccessful(ctx context.Context, tx Tx) (int, error)
	CountAll(ctx context.Context, tx Tx) (int, error)
	SumStars(ctx context.Context, tx Tx) (int64, error)
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.ActivationRecord, error)
}
