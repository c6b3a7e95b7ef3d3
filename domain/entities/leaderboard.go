package entities

import "time"

// WindowKind selects how a leaderboard window is bounded.
type WindowKind string

const (
	WindowAllTime WindowKind = "alltime"
	WindowWeekly  WindowKind = "weekly"
	WindowMonthly WindowKind = "monthly"
	WindowCustom  WindowKind = "custom"
)

// Window is the time range leaderboard points are scoped to. Start and End
// are inclusive and unset for the all-time window.
type Window struct {
	Kind  WindowKind
	Start time.Time
	End   time.Time
}

// AllTimeWindow covers the full history.
func AllTimeWindow() Window {
	return Window{Kind: WindowAllTime}
}

// WeeklyWindow covers Sunday 00:00 through Saturday 23:59:59 of the week
// containing now, in now's location.
func WeeklyWindow(now time.Time) Window {
	daysSinceSunday := int(now.Weekday())
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -daysSinceSunday)
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	return Window{Kind: WindowWeekly, Start: start, End: end}
}

// MonthlyWindow covers the calendar month containing now.
func MonthlyWindow(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return Window{Kind: WindowMonthly, Start: start, End: end}
}

// CustomWindow covers a caller-supplied inclusive range.
func CustomWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, ErrInvalidWindow
	}
	if start.After(end) {
		return Window{}, ErrInvalidWindow
	}
	return Window{Kind: WindowCustom, Start: start, End: end}, nil
}

// IsAllTime reports whether the window has no time bounds.
func (w Window) IsAllTime() bool {
	return w.Kind == WindowAllTime
}

// LeaderboardEntry is one ranked row. Derived, never persisted.
type LeaderboardEntry struct {
	Rank        int
	UserID      string
	DisplayName string
	Points      int64
	Activity    ActivitySummary
	PrizeGrant  *PrizeGrant
	CreatedAt   time.Time
}
