package repository

import (
	"context"
	"fmt"

	"tokenengine/database"
	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"
)

// distributionRepository implements the DistributionRepository interface.
// Records are append-only; nothing here updates or deletes.
type distributionRepository struct {
	q Queryable
}

// NewDistributionRepository creates a new distribution repository over a pool
func NewDistributionRepository(db *database.DB) interfaces.DistributionRepository {
	return &distributionRepository{q: db.Pool}
}

func newDistributionRepository(tx Queryable) interfaces.DistributionRepository {
	return &distributionRepository{q: tx}
}

// Create appends one distribution record with its winner rows
func (r *distributionRepository) Create(ctx context.Context, record *entities.PrizeDistributionRecord) error {
	recordQuery := `
		INSERT INTO prize_distributions (contest_name, period, period_start, period_end, awarded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, recordQuery,
		record.ContestName,
		record.Period,
		record.PeriodStart,
		record.PeriodEnd,
		record.AwardedAt,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create distribution record: %w", err)
	}

	winnerQuery := `
		INSERT INTO prize_distribution_winners (distribution_id, user_id, prize_position, token_amount, grant_id)
		VALUES ($1, $2, $3, $4, $5)`

	for _, winner := range record.Winners {
		_, err := r.q.Exec(ctx, winnerQuery,
			record.ID,
			winner.UserID,
			int(winner.Position),
			winner.TokenAmount,
			winner.GrantID,
		)
		if err != nil {
			return fmt.Errorf("failed to record winner %s: %w", winner.UserID, err)
		}
	}
	return nil
}

// List returns distribution records with their winners, newest first
func (r *distributionRepository) List(ctx context.Context, limit int) ([]*entities.PrizeDistributionRecord, error) {
	recordQuery := `
		SELECT id, contest_name, period, period_start, period_end, awarded_at, created_at
		FROM prize_distributions
		ORDER BY awarded_at DESC
		LIMIT $1`

	rows, err := r.q.Query(ctx, recordQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	defer rows.Close()

	var records []*entities.PrizeDistributionRecord
	byID := make(map[int64]*entities.PrizeDistributionRecord)
	for rows.Next() {
		var record entities.PrizeDistributionRecord
		err := rows.Scan(
			&record.ID,
			&record.ContestName,
			&record.Period,
			&record.PeriodStart,
			&record.PeriodEnd,
			&record.AwardedAt,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distribution record: %w", err)
		}
		records = append(records, &record)
		byID[record.ID] = &record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate distributions: %w", err)
	}
	rows.Close()

	if len(records) == 0 {
		return records, nil
	}

	ids := make([]int64, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}

	winnerQuery := `
		SELECT distribution_id, user_id, prize_position, token_amount, grant_id
		FROM prize_distribution_winners
		WHERE distribution_id = ANY($1)
		ORDER BY prize_position`

	winnerRows, err := r.q.Query(ctx, winnerQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list distribution winners: %w", err)
	}
	defer winnerRows.Close()

	for winnerRows.Next() {
		var distributionID int64
		var winner entities.AwardedWinner
		var position int
		err := winnerRows.Scan(&distributionID, &winner.UserID, &position, &winner.TokenAmount, &winner.GrantID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distribution winner: %w", err)
		}
		winner.Position = entities.PrizePosition(position)
		if record, ok := byID[distributionID]; ok {
			record.Winners = append(record.Winners, winner)
		}
	}
	if err := winnerRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate distribution winners: %w", err)
	}
	return records, nil
}
