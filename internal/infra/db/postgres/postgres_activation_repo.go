package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-promo-activator/internal/domain/model"
	"telegram-promo-activator/internal/domain/ports/repository"
)

var _ repository.ActivationRepository = (*ActivationRepo)(nil)

type ActivationRepo struct {
	pool *pgxpool.Pool
}

func NewActivationRepo(pool *pgxpool.Pool) *ActivationRepo {
	return &ActivationRepo{pool: pool}
}

func (r *ActivationRepo) Record(ctx context.Context, tx repository.Tx, rec *model.ActivationRecord) error {
	const q = `
INSERT INTO activations (account_id, promo_code, success, stars_received, activated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	row := ex.QueryRow(ctx, q, rec.AccountID, rec.PromoCode, rec.Success, rec.StarsReported, rec.ActivatedAt)
	if err := row.Scan(&rec.ID); err != nil {
		return fmt.Errorf("record activation: %w", err)
	}
	return nil
}

func (r *ActivationRepo) CountSuccessful(ctx context.Context, tx repository.Tx) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM activations WHERE success;`)
}

func (r *ActivationRepo) CountAll(ctx context.Context, tx repository.Tx) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM activations;`)
}

func (r *ActivationRepo) count(ctx context.Context, tx repository.Tx, q string) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activations: %w", err)
	}
	return n, nil
}

func (r *ActivationRepo) SumStars(ctx context.Context, tx repository.Tx) (int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := ex.QueryRow(ctx, `SELECT COALESCE(SUM(stars_received), 0) FROM activations;`).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum stars: %w", err)
	}
	return sum, nil
}

func (r *ActivationRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.ActivationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, account_id, promo_code, success, stars_received, activated_at
  FROM activations ORDER BY id DESC LIMIT $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activations: %w", err)
	}
	defer rows.Close()

	var out []*model.ActivationRecord
	for rows.Next() {
		var rec model.ActivationRecord
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.PromoCode, &rec.Success, &rec.StarsReported, &rec.ActivatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
