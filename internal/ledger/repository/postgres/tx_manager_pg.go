package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/platform/internal/ledger/repository"
	"github.com/skillforge/platform/internal/platform/database"
)

type pgTxManager struct {
	db *pgxpool.Pool
}

// NewPgTxManager creates a TxManager over a pgx pool.
func NewPgTxManager(db *pgxpool.Pool) repository.TxManager {
	return &pgTxManager{db: db}
}

func (m *pgTxManager) WithinTx(ctx context.Context, fn func(q database.Querier) error) error {
	return pgx.BeginFunc(ctx, m.db, func(tx pgx.Tx) error {
		return fn(tx)
	})
}
