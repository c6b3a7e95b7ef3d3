package repository

import (
	"context"
	"fmt"

	"tokenengine/database"
	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// activityRepository implements the ActivityRepository interface
type activityRepository struct {
	q Queryable
}

// NewActivityRepository creates a new activity repository over a pool
func NewActivityRepository(db *database.DB) interfaces.ActivityRepository {
	return &activityRepository{q: db.Pool}
}

func newActivityRepository(tx Queryable) interfaces.ActivityRepository {
	return &activityRepository{q: tx}
}

// Record appends one activity event and assigns its ID
func (r *activityRepository) Record(ctx context.Context, event *entities.ActivityEvent) error {
	query := `
		INSERT INTO activity_events (user_id, kind, points, reversed, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.q.QueryRow(ctx, query,
		event.UserID,
		event.Kind,
		event.Points,
		event.Reversed,
		event.CreatedAt,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to record activity for user %s: %w", event.UserID, err)
	}
	return nil
}

// GetByID retrieves an event, or nil
func (r *activityRepository) GetByID(ctx context.Context, id int64) (*entities.ActivityEvent, error) {
	query := `
		SELECT id, user_id, kind, points, reversed, created_at
		FROM activity_events
		WHERE id = $1`

	var event entities.ActivityEvent
	err := r.q.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.UserID,
		&event.Kind,
		&event.Points,
		&event.Reversed,
		&event.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity %d: %w", id, err)
	}
	return &event, nil
}

// MarkReversed flags an event as reversed by moderation
func (r *activityRepository) MarkReversed(ctx context.Context, id int64) error {
	query := `
		UPDATE activity_events
		SET reversed = TRUE
		WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark activity %d reversed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %d not found", id)
	}
	return nil
}

// WindowTotals aggregates non-reversed points and per-kind counts per user
// inside the window. An all-time window aggregates the full stream.
func (r *activityRepository) WindowTotals(ctx context.Context, window entities.Window) ([]*entities.UserWindowTotals, error) {
	query := `
		SELECT
			user_id,
			COALESCE(SUM(points), 0) AS points,
			COUNT(*) FILTER (WHERE kind = 'post_created') AS posts_created,
			COUNT(*) FILTER (WHERE kind = 'comment_made') AS comments_made,
			COUNT(*) FILTER (WHERE kind = 'like_given') AS likes_given,
			COUNT(*) FILTER (WHERE kind = 'like_received') AS likes_received
		FROM activity_events
		WHERE NOT reversed`

	args := []any{}
	if !window.IsAllTime() {
		query += ` AND created_at >= $1 AND created_at <= $2`
		args = append(args, window.Start, window.End)
	}
	query += `
		GROUP BY user_id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity: %w", err)
	}
	defer rows.Close()

	var totals []*entities.UserWindowTotals
	for rows.Next() {
		var t entities.UserWindowTotals
		err := rows.Scan(
			&t.UserID,
			&t.Points,
			&t.Activity.PostsCreated,
			&t.Activity.CommentsMade,
			&t.Activity.LikesGiven,
			&t.Activity.LikesReceived,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan window totals: %w", err)
		}
		totals = append(totals, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate window totals: %w", err)
	}
	return totals, nil
}
