package repository

import (
	"context"
	"fmt"

	"tokenengine/database"
	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const prizeGrantColumns = `id, user_id, amount, remaining, prize_type, status,
		granted_at, expires_at, created_at, updated_at`

// prizeGrantRepository implements the PrizeGrantRepository interface
type prizeGrantRepository struct {
	q Queryable
}

// NewPrizeGrantRepository creates a new prize grant repository over a pool
func NewPrizeGrantRepository(db *database.DB) interfaces.PrizeGrantRepository {
	return &prizeGrantRepository{q: db.Pool}
}

func newPrizeGrantRepository(tx Queryable) interfaces.PrizeGrantRepository {
	return &prizeGrantRepository{q: tx}
}

func scanPrizeGrant(row pgx.Row) (*entities.PrizeGrant, error) {
	var grant entities.PrizeGrant
	err := row.Scan(
		&grant.ID,
		&grant.UserID,
		&grant.Amount,
		&grant.Remaining,
		&grant.PrizeType,
		&grant.Status,
		&grant.GrantedAt,
		&grant.ExpiresAt,
		&grant.CreatedAt,
		&grant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// GetActiveByUser returns the user's grant with status active, or nil. The
// row is locked so lazy expiry and consumption cannot race.
func (r *prizeGrantRepository) GetActiveByUser(ctx context.Context, userID string) (*entities.PrizeGrant, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM prize_grants
		WHERE user_id = $1 AND status = 'active'
		FOR UPDATE`, prizeGrantColumns)

	grant, err := scanPrizeGrant(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active grant for user %s: %w", userID, err)
	}
	return grant, nil
}

// Create inserts a new grant and assigns its ID
func (r *prizeGrantRepository) Create(ctx context.Context, grant *entities.PrizeGrant) error {
	query := `
		INSERT INTO prize_grants (user_id, amount, remaining, prize_type, status, granted_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		grant.UserID,
		grant.Amount,
		grant.Remaining,
		grant.PrizeType,
		grant.Status,
		grant.GrantedAt,
		grant.ExpiresAt,
	).Scan(&grant.ID, &grant.CreatedAt, &grant.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create grant for user %s: %w", grant.UserID, err)
	}
	return nil
}

// Update persists status and remaining-amount changes
func (r *prizeGrantRepository) Update(ctx context.Context, grant *entities.PrizeGrant) error {
	query := `
		UPDATE prize_grants
		SET remaining = $2,
			status = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query, grant.ID, grant.Remaining, grant.Status).Scan(&grant.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("grant %d not found", grant.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update grant %d: %w", grant.ID, err)
	}
	return nil
}

// GetByUser returns the user's grants, newest first
func (r *prizeGrantRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.PrizeGrant, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM prize_grants
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, prizeGrantColumns)

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants for user %s: %w", userID, err)
	}
	defer rows.Close()

	var grants []*entities.PrizeGrant
	for rows.Next() {
		grant, err := scanPrizeGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grants: %w", err)
	}
	return grants, nil
}
