package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Repository methods accept `tx Tx` and detect the concrete handle on the
// implementation side (pgx.Tx for Postgres); they must gracefully accept nil
// for the non-transactional path. Keep this interface small and stable.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
