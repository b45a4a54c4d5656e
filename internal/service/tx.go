package service

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is the slice of pgxpool.Pool the transactional services need.
// Tests substitute a fake that hands out no-op transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
