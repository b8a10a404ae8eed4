package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-promo-activator/internal/domain"
	"telegram-promo-activator/internal/domain/model"
	"telegram-promo-activator/internal/domain/ports/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Save upserts by token. A conflicting token refreshes the username and
// reactivates the row; balance and created_at are left untouched so a
// re-registration never resets store state. The stored id and created_at are
// written back into a.
func (r *AccountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	const q = `
INSERT INTO accounts (token, username, balance, is_active, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (token) DO UPDATE SET
  username = EXCLUDED.username,
  is_active = TRUE
RETURNING id, created_at;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	row := ex.QueryRow(ctx, q, a.Token, a.Username, a.Balance, a.IsActive, a.CreatedAt)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (r *AccountRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.Account, error) {
	const q = `
SELECT id, token, username, balance, is_active, created_at
  FROM accounts WHERE token = $1;
`
	return r.findOne(ctx, tx, q, token)
}

func (r *AccountRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Account, error) {
	const q = `
SELECT id, token, username, balance, is_active, created_at
  FROM accounts WHERE id = $1;
`
	return r.findOne(ctx, tx, q, id)
}

func (r *AccountRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Account, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var a model.Account
	if err := ex.QueryRow(ctx, q, arg).Scan(&a.ID, &a.Token, &a.Username, &a.Balance, &a.IsActive, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListActive returns active accounts in insertion order.
func (r *AccountRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Account, error) {
	const q = `
SELECT id, token, username, balance, is_active, created_at
  FROM accounts WHERE is_active ORDER BY id;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Token, &a.Username, &a.Balance, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) UpdateBalance(ctx context.Context, tx repository.Tx, accountID, balance int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2;`, balance, accountID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func (r *AccountRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE is_active;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active accounts: %w", err)
	}
	return n, nil
}

func (r *AccountRepo) SumBalances(ctx context.Context, tx repository.Tx) (int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := ex.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE is_active;`).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	return sum, nil
}
