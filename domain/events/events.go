package events

import (
	"time"

	"tokenengine/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeAccountCreated    EventType = "account_created"
	EventTypePrizeGranted      EventType = "prize_granted"
	EventTypePrizeExpired      EventType = "prize_expired"
	EventTypeReferralRecorded  EventType = "referral_recorded"
	EventTypeMilestoneClaimed  EventType = "milestone_claimed"
	EventTypePrizesDistributed EventType = "prizes_distributed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a token balance change that occurred
type BalanceChangeEvent struct {
	UserID          string
	DailyBefore     int64
	DailyAfter      int64
	ChangeAmount    int64
	TransactionType entities.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a new token account provisioning
type AccountCreatedEvent struct {
	UserID       string
	DailyLimit   int64
	MonthlyTotal int64
	ReferralCode string
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// PrizeGrantedEvent represents a prize token grant being issued
type PrizeGrantedEvent struct {
	UserID    string
	GrantID   int64
	Amount    int64
	PrizeType string
	ExpiresAt time.Time
}

func (e PrizeGrantedEvent) Type() EventType {
	return EventTypePrizeGranted
}

// PrizeExpiredEvent represents a grant reconciled to expired on read
type PrizeExpiredEvent struct {
	UserID    string
	GrantID   int64
	Remaining int64
	PrizeType string
}

func (e PrizeExpiredEvent) Type() EventType {
	return EventTypePrizeExpired
}

// ReferralRecordedEvent represents one active referral counted toward
// all milestone thresholds
type ReferralRecordedEvent struct {
	UserID string
}

func (e ReferralRecordedEvent) Type() EventType {
	return EventTypeReferralRecorded
}

// MilestoneClaimedEvent represents a completed referral milestone cycle
type MilestoneClaimedEvent struct {
	UserID          string
	MilestoneType   entities.MilestoneType
	Reward          int64
	CyclesCompleted int
}

func (e MilestoneClaimedEvent) Type() EventType {
	return EventTypeMilestoneClaimed
}

// PrizesDistributedEvent represents a completed (possibly partial)
// prize distribution run
type PrizesDistributedEvent struct {
	RecordID     int64
	ContestName  string
	AwardedCount int
	SkippedCount int
}

func (e PrizesDistributedEvent) Type() EventType {
	return EventTypePrizesDistributed
}
