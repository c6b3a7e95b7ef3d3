package repository

import (
	"context"
	"fmt"

	"tokenengine/database"
	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const milestoneColumns = `id, user_id, milestone_type, current_count, cycles_completed,
		last_reset_at, created_at, updated_at`

// milestoneRepository implements the MilestoneRepository interface
type milestoneRepository struct {
	q Queryable
}

// NewMilestoneRepository creates a new milestone repository over a pool
func NewMilestoneRepository(db *database.DB) interfaces.MilestoneRepository {
	return &milestoneRepository{q: db.Pool}
}

func newMilestoneRepository(tx Queryable) interfaces.MilestoneRepository {
	return &milestoneRepository{q: tx}
}

func scanMilestoneState(row pgx.Row) (*entities.MilestoneState, error) {
	var state entities.MilestoneState
	err := row.Scan(
		&state.ID,
		&state.UserID,
		&state.Type,
		&state.CurrentCount,
		&state.CyclesCompleted,
		&state.LastResetAt,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetOrCreateForUser returns one state row per milestone type, creating
// zeroed rows for types the user does not have yet. Rows come back in
// ascending threshold order.
func (r *milestoneRepository) GetOrCreateForUser(ctx context.Context, userID string) ([]*entities.MilestoneState, error) {
	insertQuery := `
		INSERT INTO milestone_states (user_id, milestone_type)
		SELECT $1, t FROM unnest($2::int[]) AS t
		ON CONFLICT (user_id, milestone_type) DO NOTHING`

	types := make([]int, len(entities.MilestoneTypes))
	for i, mt := range entities.MilestoneTypes {
		types[i] = int(mt)
	}
	if _, err := r.q.Exec(ctx, insertQuery, userID, types); err != nil {
		return nil, fmt.Errorf("failed to ensure milestone rows for user %s: %w", userID, err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM milestone_states
		WHERE user_id = $1
		ORDER BY milestone_type
		FOR UPDATE`, milestoneColumns)

	rows, err := r.q.Query(ctx, selectQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get milestones for user %s: %w", userID, err)
	}
	defer rows.Close()

	var states []*entities.MilestoneState
	for rows.Next() {
		state, err := scanMilestoneState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan milestone state: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate milestone states: %w", err)
	}
	return states, nil
}

// Get returns the state for one (user, type) pair, or nil
func (r *milestoneRepository) Get(ctx context.Context, userID string, milestoneType entities.MilestoneType) (*entities.MilestoneState, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM milestone_states
		WHERE user_id = $1 AND milestone_type = $2
		FOR UPDATE`, milestoneColumns)

	state, err := scanMilestoneState(r.q.QueryRow(ctx, query, userID, int(milestoneType)))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone %d for user %s: %w", milestoneType, userID, err)
	}
	return state, nil
}

// Update persists counter changes unconditionally
func (r *milestoneRepository) Update(ctx context.Context, state *entities.MilestoneState) error {
	query := `
		UPDATE milestone_states
		SET current_count = $2,
			cycles_completed = $3,
			last_reset_at = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		state.ID,
		state.CurrentCount,
		state.CyclesCompleted,
		state.LastResetAt,
	).Scan(&state.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("milestone state %d not found", state.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update milestone state %d: %w", state.ID, err)
	}
	return nil
}

// UpdateWithCycleCheck persists the state only if the stored cycles_completed
// still equals expectedCycles. A concurrent claim that already bumped the
// cycle count makes the conditional UPDATE match nothing.
func (r *milestoneRepository) UpdateWithCycleCheck(ctx context.Context, state *entities.MilestoneState, expectedCycles int) error {
	query := `
		UPDATE milestone_states
		SET current_count = $2,
			cycles_completed = $3,
			last_reset_at = $4,
			updated_at = NOW()
		WHERE id = $1 AND cycles_completed = $5
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		state.ID,
		state.CurrentCount,
		state.CyclesCompleted,
		state.LastResetAt,
		expectedCycles,
	).Scan(&state.UpdatedAt)

	if err == pgx.ErrNoRows {
		return entities.ErrStoreConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update milestone state %d: %w", state.ID, err)
	}
	return nil
}
