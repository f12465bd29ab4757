package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/platform/internal/ledger/domain"
	"github.com/skillforge/platform/internal/ledger/repository"
	"github.com/skillforge/platform/internal/platform/database"
)

type pgTransactionRepository struct{}

// NewPgTransactionRepository creates a TransactionRepository backed by
// PostgreSQL.
func NewPgTransactionRepository() repository.TransactionRepository {
	return &pgTransactionRepository{}
}

func (r *pgTransactionRepository) Create(ctx context.Context, q database.Querier, t *domain.Transaction) (*domain.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO transactions (id, user_id, type, category, amount, related_id, counterpart_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	`
	_, err := q.Exec(ctx, query,
		t.ID, t.UserID, t.Type, t.Category, t.Amount,
		t.RelatedID, t.CounterpartID, t.Description, t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

const transactionColumns = `id, user_id, type, category, amount, related_id, counterpart_id, COALESCE(description, ''), created_at`

func (r *pgTransactionRepository) ListByUser(ctx context.Context, q database.Querier, userID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`
	return queryTransactions(ctx, q, query, userID)
}

func (r *pgTransactionRepository) List(ctx context.Context, q database.Querier) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC`
	return queryTransactions(ctx, q, query)
}

func queryTransactions(ctx context.Context, q database.Querier, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Category, &t.Amount,
			&t.RelatedID, &t.CounterpartID, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
