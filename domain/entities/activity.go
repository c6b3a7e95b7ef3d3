package entities

import "time"

// ActivityKind categorizes a community activity event.
type ActivityKind string

const (
	ActivityKindPostCreated  ActivityKind = "post_created"
	ActivityKindCommentMade  ActivityKind = "comment_made"
	ActivityKindLikeGiven    ActivityKind = "like_given"
	ActivityKindLikeReceived ActivityKind = "like_received"
)

// Valid reports whether k is a known activity kind.
func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityKindPostCreated, ActivityKindCommentMade, ActivityKindLikeGiven, ActivityKindLikeReceived:
		return true
	}
	return false
}

// ActivityEvent is one community action that earned points. Events are
// append-only; moderation reversal flips Reversed instead of deleting, so
// windowed sums stay reproducible.
type ActivityEvent struct {
	ID        int64        `db:"id"`
	UserID    string       `db:"user_id"`
	Kind      ActivityKind `db:"kind"`
	Points    int64        `db:"points"`
	Reversed  bool         `db:"reversed"`
	CreatedAt time.Time    `db:"created_at"`
}

// ActivitySummary is the per-kind event count snapshot attached to
// leaderboard entries, scoped to the same window as the points.
type ActivitySummary struct {
	PostsCreated  int `db:"posts_created"`
	CommentsMade  int `db:"comments_made"`
	LikesGiven    int `db:"likes_given"`
	LikesReceived int `db:"likes_received"`
}

// UserWindowTotals aggregates one user's activity inside a window.
type UserWindowTotals struct {
	UserID   string
	Points   int64
	Activity ActivitySummary
}
