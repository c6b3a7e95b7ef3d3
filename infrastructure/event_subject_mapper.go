package infrastructure

import (
	"fmt"

	"tokenengine/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "tokens.balance_changed"
	case events.EventTypeAccountCreated:
		return "tokens.account_created"
	case events.EventTypePrizeGranted:
		return "prizes.granted"
	case events.EventTypePrizeExpired:
		return "prizes.expired"
	case events.EventTypeReferralRecorded:
		return "referrals.recorded"
	case events.EventTypeMilestoneClaimed:
		return "referrals.milestone_claimed"
	case events.EventTypePrizesDistributed:
		return "prizes.distributed"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"tokens.balance_changed",
		"tokens.account_created",
		"prizes.granted",
		"prizes.expired",
		"prizes.distributed",
		"referrals.recorded",
		"referrals.milestone_claimed",
	}
}
