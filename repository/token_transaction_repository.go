package repository

import (
	"context"
	"fmt"
	"time"

	"tokenengine/database"
	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const tokenTransactionColumns = `id, user_id, daily_before, daily_after, amount,
		transaction_type, reason, metadata, created_at`

// tokenTransactionRepository implements the TokenTransactionRepository
// interface over the append-only history table
type tokenTransactionRepository struct {
	q Queryable
}

// NewTokenTransactionRepository creates a new transaction repository over a pool
func NewTokenTransactionRepository(db *database.DB) interfaces.TokenTransactionRepository {
	return &tokenTransactionRepository{q: db.Pool}
}

func newTokenTransactionRepository(tx Queryable) interfaces.TokenTransactionRepository {
	return &tokenTransactionRepository{q: tx}
}

func scanTokenTransaction(row pgx.Row) (*entities.TokenTransaction, error) {
	var transaction entities.TokenTransaction
	err := row.Scan(
		&transaction.ID,
		&transaction.UserID,
		&transaction.DailyBefore,
		&transaction.DailyAfter,
		&transaction.Amount,
		&transaction.Type,
		&transaction.Reason,
		&transaction.Metadata,
		&transaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Record creates a new history entry
func (r *tokenTransactionRepository) Record(ctx context.Context, transaction *entities.TokenTransaction) error {
	query := `
		INSERT INTO token_transactions (user_id, daily_before, daily_after, amount,
			transaction_type, reason, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		transaction.UserID,
		transaction.DailyBefore,
		transaction.DailyAfter,
		transaction.Amount,
		transaction.Type,
		transaction.Reason,
		transaction.Metadata,
	).Scan(&transaction.ID, &transaction.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record transaction for user %s: %w", transaction.UserID, err)
	}
	return nil
}

// GetByUser returns history for a specific user, newest first
func (r *tokenTransactionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.TokenTransaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM token_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, tokenTransactionColumns)

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectTokenTransactions(rows)
}

// GetByDateRange returns history within a date range, oldest first
func (r *tokenTransactionRepository) GetByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*entities.TokenTransaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM token_transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at`, tokenTransactionColumns)

	rows, err := r.q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectTokenTransactions(rows)
}

func collectTokenTransactions(rows pgx.Rows) ([]*entities.TokenTransaction, error) {
	var transactions []*entities.TokenTransaction
	for rows.Next() {
		transaction, err := scanTokenTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
