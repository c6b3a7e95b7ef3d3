package entities

import (
	"fmt"
	"time"
)

// MilestoneType identifies a referral milestone by its target threshold.
type MilestoneType int

const (
	MilestoneType8  MilestoneType = 8
	MilestoneType15 MilestoneType = 15
	MilestoneType25 MilestoneType = 25
)

// MilestoneTypes lists all milestone types in ascending threshold order.
// Every referral increments all of them against their own thresholds.
var MilestoneTypes = []MilestoneType{MilestoneType8, MilestoneType15, MilestoneType25}

// Target returns the active-referral threshold for the type.
func (t MilestoneType) Target() int {
	return int(t)
}

// Reward returns the token reward for completing one cycle of the type.
func (t MilestoneType) Reward() int64 {
	switch t {
	case MilestoneType8:
		return 300
	case MilestoneType15:
		return 500
	case MilestoneType25:
		return 1000
	default:
		return 0
	}
}

// Valid reports whether t is a known milestone type.
func (t MilestoneType) Valid() bool {
	switch t {
	case MilestoneType8, MilestoneType15, MilestoneType25:
		return true
	}
	return false
}

// MilestoneState tracks one user's progress against one milestone type.
type MilestoneState struct {
	ID              int64         `db:"id"`
	UserID          string        `db:"user_id"`
	Type            MilestoneType `db:"milestone_type"`
	CurrentCount    int           `db:"current_count"`
	CyclesCompleted int           `db:"cycles_completed"`
	LastResetAt     *time.Time    `db:"last_reset_at"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

// IsEligible reports whether the current count has reached the target.
func (m *MilestoneState) IsEligible() bool {
	return m.CurrentCount >= m.Type.Target()
}

// Progress returns completion of the current cycle as a percentage,
// capped at 100.
func (m *MilestoneState) Progress() float64 {
	target := m.Type.Target()
	if target == 0 {
		return 0
	}
	pct := float64(m.CurrentCount) / float64(target) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// CompleteCycle claims one finished cycle. Referrals accrued beyond the
// threshold carry forward into the next cycle; they are never discarded.
func (m *MilestoneState) CompleteCycle(now time.Time) error {
	if !m.IsEligible() {
		return ErrMilestoneNotEligible
	}
	m.CurrentCount -= m.Type.Target()
	m.CyclesCompleted++
	m.LastResetAt = &now
	return nil
}

// String renders the state as "target×cycles" for breakdown displays.
func (m *MilestoneState) String() string {
	return fmt.Sprintf("%d×%d", m.Type.Target(), m.CyclesCompleted)
}
